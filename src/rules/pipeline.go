package rules

import (
	"context"
	"errors"
	"fmt"
	"ledger-rules/src/models"
	"time"

	"github.com/charmbracelet/log"
)

// RunResult is the outcome of one pipeline walk over one entry.
type RunResult struct {
	Entry          models.Entry                  `json:"entry"`
	AppliedRuleIDs []int64                       `json:"applied_rule_ids"`
	Executions     []models.ExecutionRecord      `json:"executions"`
	Warnings       []models.ConfigurationWarning `json:"-"`
}

// Dispatcher walks the ordered rule set for a single entry and trigger,
// persisting and auditing every rule that actually changes the entry.
type Dispatcher struct {
	rules   *Repository
	entries EntryStore
	audit   AuditStore
	locks   *entryLocks
	now     func() time.Time
}

func NewDispatcher(rules *Repository, entries EntryStore, audit AuditStore) *Dispatcher {
	return &Dispatcher{
		rules:   rules,
		entries: entries,
		audit:   audit,
		locks:   newEntryLocks(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// LockEntry blocks until the caller is the only writer of entry id. Callers
// that mutate entries outside the engine use it to stay serialized with rule
// application.
func (d *Dispatcher) LockEntry(id int64) (unlock func()) {
	return d.locks.lock(id)
}

// Run evaluates every enabled rule gated in for trigger against the current
// state of the entry, in (priority, id) order. Each rule sees the entry as
// left by the rules before it. The walk stops early only after a
// stop_after_apply rule produced a non-empty diff.
//
// On a persistence failure the walk is aborted; the result holds the entry as
// last successfully persisted together with the rules applied up to then.
func (d *Dispatcher) Run(ctx context.Context, trigger models.Trigger, entryID int64) (RunResult, error) {
	if !trigger.Valid() {
		return RunResult{}, &models.ValidationError{Field: "trigger", Reason: fmt.Sprintf("unknown trigger %q", trigger)}
	}
	active, err := d.rules.ActiveRules(ctx, trigger)
	if err != nil {
		return RunResult{}, err
	}

	unlock := d.locks.lock(entryID)
	defer unlock()

	entry, err := d.entries.GetEntry(ctx, entryID)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{Entry: entry}
	for _, rule := range active {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		applied, err := d.applyRule(ctx, trigger, rule, &result)
		if err != nil {
			return result, err
		}
		if applied && rule.StopAfterApply {
			log.Debugf("Rule %d stopped the %s pipeline for entry %d", rule.ID, trigger, entryID)
			break
		}
	}
	return result, nil
}

// RunRule applies a single rule to one entry as a manual trigger. The rule's
// apply_on_* flags are ignored; a disabled rule is refused.
func (d *Dispatcher) RunRule(ctx context.Context, rule models.Rule, entryID int64) (RunResult, error) {
	if !rule.IsEnabled {
		return RunResult{}, models.ErrRuleDisabled
	}

	unlock := d.locks.lock(entryID)
	defer unlock()

	entry, err := d.entries.GetEntry(ctx, entryID)
	if err != nil {
		return RunResult{}, err
	}
	result := RunResult{Entry: entry}
	_, err = d.applyRule(ctx, models.TriggerManualApply, rule, &result)
	return result, err
}

// applyRule must be called with the entry lock held.
func (d *Dispatcher) applyRule(ctx context.Context, trigger models.Trigger, rule models.Rule, result *RunResult) (bool, error) {
	current := result.Entry
	if !Matches(rule, current) {
		return false, nil
	}

	mutated, diff, warnings := Apply(rule.Actions, current)
	for _, w := range warnings {
		w.RuleID = rule.ID
		log.Warnf("Skipping action in rule %d: %v", rule.ID, w)
		result.Warnings = append(result.Warnings, w)
	}
	if diff.Empty() {
		return false, nil
	}

	rec := models.ExecutionRecord{
		RuleID:    rule.ID,
		EntryID:   current.ID,
		Trigger:   trigger,
		Changes:   diff,
		CreatedAt: d.now(),
	}
	saved, err := d.audit.RecordExecution(ctx, mutated, rec)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			return false, err
		}
		return false, &models.PersistenceError{EntryID: current.ID, Err: err}
	}

	mutated.UpdatedAt = saved.CreatedAt
	result.Entry = mutated
	result.AppliedRuleIDs = append(result.AppliedRuleIDs, rule.ID)
	result.Executions = append(result.Executions, saved)
	log.Infof("Rule %d changed entry %d on %s: %d field(s)", rule.ID, current.ID, trigger, len(diff))
	return true, nil
}
