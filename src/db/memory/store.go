package memory

import (
	"cmp"
	"context"
	"ledger-rules/src/models"
	"ledger-rules/src/rules"
	"maps"
	"slices"
	"sync"
	"time"
)

// Store keeps rules, entries and executions in process memory. It backs the
// tests and STORAGE=memory.
type Store struct {
	mu         sync.RWMutex
	rules      map[int64]models.Rule
	deleted    map[int64]bool
	entries    map[int64]models.Entry
	executions []models.ExecutionRecord
	nextRule   int64
	nextEntry  int64
	nextExec   int64
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		rules:   make(map[int64]models.Rule),
		deleted: make(map[int64]bool),
		entries: make(map[int64]models.Entry),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) InsertRule(_ context.Context, rule models.Rule) (models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRule++
	now := s.now()
	rule.ID = s.nextRule
	rule.RunCount = 0
	rule.LastRunAt = nil
	rule.CreatedAt = now
	rule.UpdatedAt = now
	s.rules[rule.ID] = cloneRule(rule)
	return cloneRule(rule), nil
}

func (s *Store) ReplaceRule(_ context.Context, id int64, rule models.Rule) (models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.liveRule(id)
	if !ok {
		return models.Rule{}, &models.NotFoundError{Resource: "rule", ID: id}
	}
	rule.ID = id
	rule.RunCount = existing.RunCount
	rule.LastRunAt = existing.LastRunAt
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = s.now()
	s.rules[id] = cloneRule(rule)
	return cloneRule(rule), nil
}

func (s *Store) SetRuleEnabled(_ context.Context, id int64, enabled bool) (models.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rule, ok := s.liveRule(id)
	if !ok {
		return models.Rule{}, &models.NotFoundError{Resource: "rule", ID: id}
	}
	rule.IsEnabled = enabled
	rule.UpdatedAt = s.now()
	s.rules[id] = rule
	return cloneRule(rule), nil
}

func (s *Store) GetRule(_ context.Context, id int64) (models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rule, ok := s.liveRule(id)
	if !ok {
		return models.Rule{}, &models.NotFoundError{Resource: "rule", ID: id}
	}
	return cloneRule(rule), nil
}

func (s *Store) ListRules(_ context.Context, limit, offset int) ([]models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Rule, 0, len(s.rules))
	for id, rule := range s.rules {
		if s.deleted[id] {
			continue
		}
		out = append(out, cloneRule(rule))
	}
	slices.SortFunc(out, func(a, b models.Rule) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return page(out, limit, offset), nil
}

func (s *Store) DeleteRule(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.liveRule(id); !ok {
		return &models.NotFoundError{Resource: "rule", ID: id}
	}
	s.deleted[id] = true
	return nil
}

func (s *Store) liveRule(id int64) (models.Rule, bool) {
	rule, ok := s.rules[id]
	if !ok || s.deleted[id] {
		return models.Rule{}, false
	}
	return rule, true
}

func (s *Store) CreateEntry(_ context.Context, entry models.Entry) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntry++
	now := s.now()
	entry.ID = s.nextEntry
	entry.CreatedAt = now
	entry.UpdatedAt = now
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *Store) UpdateEntry(_ context.Context, entry models.Entry) (models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.entries[entry.ID]
	if !ok {
		return models.Entry{}, &models.NotFoundError{Resource: "entry", ID: entry.ID}
	}
	entry.CreatedAt = existing.CreatedAt
	entry.UpdatedAt = s.now()
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *Store) GetEntry(_ context.Context, id int64) (models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return models.Entry{}, &models.NotFoundError{Resource: "entry", ID: id}
	}
	return entry, nil
}

// ListEntries orders by date desc, id desc, like the SQL store.
func (s *Store) ListEntries(_ context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if filter.Matches(entry) {
			out = append(out, entry)
		}
	}
	slices.SortFunc(out, func(a, b models.Entry) int {
		if c := b.Data.Compare(a.Data.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return page(out, filter.Limit, 0), nil
}

func (s *Store) RecordExecution(_ context.Context, entry models.Entry, rec models.ExecutionRecord) (models.ExecutionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.entries[entry.ID]
	if !ok {
		return models.ExecutionRecord{}, &models.NotFoundError{Resource: "entry", ID: entry.ID}
	}
	rule, ok := s.rules[rec.RuleID]
	if !ok {
		return models.ExecutionRecord{}, &models.NotFoundError{Resource: "rule", ID: rec.RuleID}
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	stored.Descricao = entry.Descricao
	stored.Categoria = entry.Categoria
	stored.Status = entry.Status
	stored.Metodo = entry.Metodo
	stored.Tags = entry.Tags
	stored.UpdatedAt = rec.CreatedAt
	s.entries[entry.ID] = stored

	s.nextExec++
	rec.ID = s.nextExec
	rec.Changes = maps.Clone(rec.Changes)
	s.executions = append(s.executions, rec)

	lastRun := rec.CreatedAt
	rule.RunCount++
	rule.LastRunAt = &lastRun
	s.rules[rule.ID] = rule
	return rec, nil
}

func (s *Store) ListExecutions(_ context.Context, ruleID int64, limit int) ([]models.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ExecutionRecord
	for i := len(s.executions) - 1; i >= 0; i-- {
		rec := s.executions[i]
		if rec.RuleID != ruleID {
			continue
		}
		rec.Changes = maps.Clone(rec.Changes)
		out = append(out, rec)
	}
	slices.SortStableFunc(out, func(a, b models.ExecutionRecord) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return page(out, limit, 0), nil
}

// RuleExists reports whether id was ever assigned, deleted rules included.
func (s *Store) RuleExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rules[id]
	return ok, nil
}

// CountExecutions returns how many records reference ruleID.
func (s *Store) CountExecutions(ruleID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.executions {
		if rec.RuleID == ruleID {
			n++
		}
	}
	return n
}

func cloneRule(r models.Rule) models.Rule {
	r.Conditions = slices.Clone(r.Conditions)
	r.Actions = slices.Clone(r.Actions)
	if r.LastRunAt != nil {
		t := *r.LastRunAt
		r.LastRunAt = &t
	}
	return r
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

var _ rules.Store = (*Store)(nil)
