package db

import (
	"context"
	"ledger-rules/src/models"
	"ledger-rules/src/rules"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store adapts the query functions to the engine's persistence interfaces.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InsertRule(ctx context.Context, rule models.Rule) (models.Rule, error) {
	return CreateRule(ctx, s.pool, rule)
}

func (s *Store) ReplaceRule(ctx context.Context, id int64, rule models.Rule) (models.Rule, error) {
	return UpdateRule(ctx, s.pool, id, rule)
}

func (s *Store) SetRuleEnabled(ctx context.Context, id int64, enabled bool) (models.Rule, error) {
	return SetRuleEnabled(ctx, s.pool, id, enabled)
}

func (s *Store) GetRule(ctx context.Context, id int64) (models.Rule, error) {
	return GetRuleByID(ctx, s.pool, id)
}

func (s *Store) ListRules(ctx context.Context, limit, offset int) ([]models.Rule, error) {
	return GetAllRules(ctx, s.pool, limit, offset)
}

func (s *Store) DeleteRule(ctx context.Context, id int64) error {
	return DeleteRule(ctx, s.pool, id)
}

func (s *Store) CreateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	return CreateEntry(ctx, s.pool, entry)
}

func (s *Store) UpdateEntry(ctx context.Context, entry models.Entry) (models.Entry, error) {
	return UpdateEntry(ctx, s.pool, entry)
}

func (s *Store) GetEntry(ctx context.Context, id int64) (models.Entry, error) {
	return GetEntryByID(ctx, s.pool, id)
}

func (s *Store) ListEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error) {
	return GetEntries(ctx, s.pool, filter)
}

func (s *Store) RecordExecution(ctx context.Context, entry models.Entry, rec models.ExecutionRecord) (models.ExecutionRecord, error) {
	return RecordExecution(ctx, s.pool, entry, rec)
}

func (s *Store) ListExecutions(ctx context.Context, ruleID int64, limit int) ([]models.ExecutionRecord, error) {
	return GetExecutionsForRule(ctx, s.pool, ruleID, limit)
}

func (s *Store) RuleExists(ctx context.Context, ruleID int64) (bool, error) {
	return RuleExists(ctx, s.pool, ruleID)
}

var _ rules.Store = (*Store)(nil)
