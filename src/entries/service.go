package entries

import (
	"context"
	"ledger-rules/src/models"
	"ledger-rules/src/rules"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Store is the write side of the ledger.
type Store interface {
	CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error)
	UpdateEntry(ctx context.Context, entry models.Entry) (models.Entry, error)
	GetEntry(ctx context.Context, id int64) (models.Entry, error)
}

// Result is an entry after its trigger ran. RuleError is set when the entry
// was saved but the rule pipeline failed part way.
type Result struct {
	Entry          models.Entry `json:"entry"`
	AppliedRuleIDs []int64      `json:"applied_rule_ids"`
	RuleError      string       `json:"rule_error,omitempty"`
}

type ImportError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type ImportResult struct {
	BatchID  string        `json:"batch_id"`
	Imported int           `json:"imported"`
	Entries  []Result      `json:"entries"`
	Errors   []ImportError `json:"errors"`
}

// Service creates, edits and imports entries and fires the matching rule
// trigger for each one.
type Service struct {
	store      Store
	dispatcher *rules.Dispatcher
}

func NewService(store Store, dispatcher *rules.Dispatcher) *Service {
	return &Service{store: store, dispatcher: dispatcher}
}

func (s *Service) Get(ctx context.Context, id int64) (models.Entry, error) {
	return s.store.GetEntry(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Result, error) {
	entry, err := in.apply(models.Entry{})
	if err != nil {
		return Result{}, err
	}
	created, err := s.store.CreateEntry(ctx, entry)
	if err != nil {
		return Result{}, err
	}
	log.Infof("Created entry id %d", created.ID)
	return s.trigger(ctx, models.TriggerCreate, created), nil
}

// Update rewrites the entry under its lock so it cannot interleave with a
// rule writing the same entry, then runs the edit trigger.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Result, error) {
	updated, err := func() (models.Entry, error) {
		unlock := s.dispatcher.LockEntry(id)
		defer unlock()

		current, err := s.store.GetEntry(ctx, id)
		if err != nil {
			return models.Entry{}, err
		}
		entry, err := in.apply(current)
		if err != nil {
			return models.Entry{}, err
		}
		return s.store.UpdateEntry(ctx, entry)
	}()
	if err != nil {
		return Result{}, err
	}
	log.Infof("Updated entry id %d", updated.ID)
	return s.trigger(ctx, models.TriggerEdit, updated), nil
}

// Import creates every valid input and runs the import trigger on it. Invalid
// inputs are reported by index and do not stop the batch.
func (s *Service) Import(ctx context.Context, inputs []Input) (ImportResult, error) {
	result := ImportResult{
		BatchID: uuid.NewString(),
		Entries: []Result{},
		Errors:  []ImportError{},
	}
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		entry, err := in.apply(models.Entry{})
		if err != nil {
			result.Errors = append(result.Errors, ImportError{Index: i, Error: err.Error()})
			continue
		}
		created, err := s.store.CreateEntry(ctx, entry)
		if err != nil {
			log.Errorf("Failed to import entry %d of batch %s: %v", i, result.BatchID, err)
			result.Errors = append(result.Errors, ImportError{Index: i, Error: err.Error()})
			continue
		}
		result.Entries = append(result.Entries, s.trigger(ctx, models.TriggerImport, created))
		result.Imported++
	}
	log.Infof("Imported %d of %d entries in batch %s", result.Imported, len(inputs), result.BatchID)
	return result, nil
}

// trigger runs the pipeline detached from ctx's cancellation: once the entry
// is saved its rules run to the end even if the client went away.
func (s *Service) trigger(ctx context.Context, trigger models.Trigger, entry models.Entry) Result {
	run, err := s.dispatcher.Run(context.WithoutCancel(ctx), trigger, entry.ID)
	if err != nil {
		log.Errorf("Rule pipeline failed for entry %d on %s: %v", entry.ID, trigger, err)
		out := Result{Entry: entry, AppliedRuleIDs: []int64{}, RuleError: err.Error()}
		if run.Entry.ID != 0 {
			out.Entry = run.Entry
			out.AppliedRuleIDs = append(out.AppliedRuleIDs, run.AppliedRuleIDs...)
		}
		return out
	}
	applied := run.AppliedRuleIDs
	if applied == nil {
		applied = []int64{}
	}
	return Result{Entry: run.Entry, AppliedRuleIDs: applied}
}
