package rules

import (
	"cmp"
	"context"
	"fmt"
	"ledger-rules/src/models"
	"slices"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Repository is the validated CRUD surface over rules. It never touches
// run_count or last_run_at; those belong to the dispatcher.
type Repository struct {
	store RuleStore
	cache RuleCache

	// generation is part of every cache key. Bumping it on writes makes
	// lists cached by in-flight readers unreachable.
	generation atomic.Uint64
}

// NewRepository builds a repository. cache may be nil.
func NewRepository(store RuleStore, cache RuleCache) *Repository {
	return &Repository{store: store, cache: cache}
}

func (r *Repository) Create(ctx context.Context, draft models.RuleDraft) (models.Rule, error) {
	rule, err := ruleFromDraft(draft)
	if err != nil {
		return models.Rule{}, err
	}
	created, err := r.store.InsertRule(ctx, rule)
	if err != nil {
		return models.Rule{}, fmt.Errorf("insert rule: %w", err)
	}
	r.invalidate()
	return created, nil
}

func (r *Repository) Update(ctx context.Context, id int64, draft models.RuleDraft) (models.Rule, error) {
	rule, err := ruleFromDraft(draft)
	if err != nil {
		return models.Rule{}, err
	}
	updated, err := r.store.ReplaceRule(ctx, id, rule)
	if err != nil {
		return models.Rule{}, err
	}
	r.invalidate()
	return updated, nil
}

func (r *Repository) Toggle(ctx context.Context, id int64, enabled bool) (models.Rule, error) {
	rule, err := r.store.SetRuleEnabled(ctx, id, enabled)
	if err != nil {
		return models.Rule{}, err
	}
	r.invalidate()
	return rule, nil
}

// Delete hides the rule from every listing and pipeline. Its execution
// records stay in the audit log.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.store.DeleteRule(ctx, id); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *Repository) Get(ctx context.Context, id int64) (models.Rule, error) {
	return r.store.GetRule(ctx, id)
}

// List returns rules ordered by priority, then id.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Rule, error) {
	rules, err := r.store.ListRules(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	sortRules(rules)
	return rules, nil
}

// ActiveRules returns the enabled rules gated in for trigger, in evaluation
// order.
func (r *Repository) ActiveRules(ctx context.Context, trigger models.Trigger) ([]models.Rule, error) {
	key := fmt.Sprintf("rules:%s:%d", trigger, r.generation.Load())
	if r.cache != nil {
		if cached, ok := r.cache.GetRules(key); ok {
			return cached, nil
		}
	}

	all, err := r.store.ListRules(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	active := make([]models.Rule, 0, len(all))
	for _, rule := range all {
		if rule.AppliesTo(trigger) {
			active = append(active, rule)
		}
	}
	sortRules(active)

	if r.cache != nil {
		r.cache.SetRules(key, active)
	}
	return active, nil
}

func (r *Repository) invalidate() {
	r.generation.Add(1)
	if r.cache != nil {
		r.cache.ClearAllRules()
	}
	log.Debug("rule cache invalidated", "generation", r.generation.Load())
}

func sortRules(rules []models.Rule) {
	slices.SortFunc(rules, func(a, b models.Rule) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
