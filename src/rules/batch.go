package rules

import (
	"cmp"
	"context"
	"fmt"
	"ledger-rules/src/models"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultFilterLimit = 200
	MaxFilterLimit     = 500
	// MaxPreviewItems caps the preview list; Matched still counts every match.
	MaxPreviewItems = 50
	DefaultWorkers  = 4
)

// Limits bounds the entry selection of batch operations.
type Limits struct {
	Default int
	Max     int
}

// Clamp resolves a client-requested limit.
func (l Limits) Clamp(requested int) int {
	ceiling := l.Max
	if ceiling <= 0 {
		ceiling = MaxFilterLimit
	}
	def := l.Default
	if def <= 0 || def > ceiling {
		def = min(DefaultFilterLimit, ceiling)
	}
	if requested <= 0 {
		return def
	}
	return min(requested, ceiling)
}

type PreviewItem struct {
	EntryID     int64           `json:"entry_id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Changes     models.Diff     `json:"changes"`
}

type PreviewResult struct {
	Matched int           `json:"matched"`
	Preview []PreviewItem `json:"preview"`
}

type EntryError struct {
	EntryID int64  `json:"entry_id"`
	Error   string `json:"error"`
}

type ApplyResult struct {
	Updated int          `json:"updated"`
	Errors  []EntryError `json:"errors"`
}

// Runner drives one rule over a filtered selection of entries.
type Runner struct {
	dispatcher *Dispatcher
	rules      *Repository
	entries    EntryStore
	limits     Limits
	workers    int
}

func NewRunner(dispatcher *Dispatcher, rules *Repository, entries EntryStore, limits Limits, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{
		dispatcher: dispatcher,
		rules:      rules,
		entries:    entries,
		limits:     limits,
		workers:    workers,
	}
}

// Test previews ruleID over the filtered entries. Nothing is written: diffs
// are computed on throwaway copies.
func (r *Runner) Test(ctx context.Context, ruleID int64, filter models.EntryFilter) (PreviewResult, error) {
	rule, err := r.rules.Get(ctx, ruleID)
	if err != nil {
		return PreviewResult{}, err
	}
	entries, err := r.selectEntries(ctx, filter)
	if err != nil {
		return PreviewResult{}, err
	}

	result := PreviewResult{Preview: []PreviewItem{}}
	for _, entry := range entries {
		if !Matches(rule, entry) {
			continue
		}
		result.Matched++
		if len(result.Preview) >= MaxPreviewItems {
			continue
		}
		_, diff, _ := Apply(rule.Actions, entry)
		result.Preview = append(result.Preview, PreviewItem{
			EntryID:     entry.ID,
			Date:        entry.Data.String(),
			Description: entry.Descricao,
			Value:       entry.Valor,
			Changes:     diff,
		})
	}
	return result, nil
}

// Apply runs ruleID against every filtered entry. Per-entry failures are
// collected and never abort the batch. If ctx is cancelled, entries not yet
// started are skipped and the partial result is returned with ctx's error.
func (r *Runner) Apply(ctx context.Context, ruleID int64, filter models.EntryFilter) (ApplyResult, error) {
	rule, err := r.rules.Get(ctx, ruleID)
	if err != nil {
		return ApplyResult{}, err
	}
	if !rule.IsEnabled {
		return ApplyResult{}, models.ErrRuleDisabled
	}
	entries, err := r.selectEntries(ctx, filter)
	if err != nil {
		return ApplyResult{}, err
	}

	var (
		mu     sync.Mutex
		result = ApplyResult{Errors: []EntryError{}}
	)
	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		entryID := entry.ID
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			// An entry that has started runs to completion.
			run, err := r.dispatcher.RunRule(context.WithoutCancel(ctx), rule, entryID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Errorf("Failed to apply rule %d to entry %d: %v", ruleID, entryID, err)
				result.Errors = append(result.Errors, EntryError{EntryID: entryID, Error: err.Error()})
				return nil
			}
			if len(run.AppliedRuleIDs) > 0 {
				result.Updated++
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.SortFunc(result.Errors, func(a, b EntryError) int {
		return cmp.Compare(a.EntryID, b.EntryID)
	})
	log.Infof("Applied rule %d to %d entries: %d updated, %d errors", ruleID, len(entries), result.Updated, len(result.Errors))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Runner) selectEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	filter.Limit = r.limits.Clamp(filter.Limit)
	entries, err := r.entries.ListEntries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	return entries, nil
}
