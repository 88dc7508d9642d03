package rules

import (
	"context"
	"ledger-rules/src/models"
)

// RuleStore persists rule definitions. ListRules returns rules that have not
// been deleted; limit <= 0 means no limit.
type RuleStore interface {
	InsertRule(ctx context.Context, rule models.Rule) (models.Rule, error)
	ReplaceRule(ctx context.Context, id int64, rule models.Rule) (models.Rule, error)
	SetRuleEnabled(ctx context.Context, id int64, enabled bool) (models.Rule, error)
	GetRule(ctx context.Context, id int64) (models.Rule, error)
	ListRules(ctx context.Context, limit, offset int) ([]models.Rule, error)
	DeleteRule(ctx context.Context, id int64) error
}

// EntryStore is the read side of the ledger the engine works on.
type EntryStore interface {
	GetEntry(ctx context.Context, id int64) (models.Entry, error)
	ListEntries(ctx context.Context, filter models.EntryFilter) ([]models.Entry, error)
}

// AuditStore owns execution records. RecordExecution must write the entry's
// rule-managed fields, append rec and bump the rule's run_count/last_run_at
// as a single atomic step: all three happen or none do. RuleExists also
// reports deleted rules, whose records stay readable.
type AuditStore interface {
	RecordExecution(ctx context.Context, entry models.Entry, rec models.ExecutionRecord) (models.ExecutionRecord, error)
	ListExecutions(ctx context.Context, ruleID int64, limit int) ([]models.ExecutionRecord, error)
	RuleExists(ctx context.Context, ruleID int64) (bool, error)
}

// Store bundles everything the engine needs from persistence.
type Store interface {
	RuleStore
	EntryStore
	AuditStore
}

// RuleCache holds ordered, trigger-filtered rule lists.
type RuleCache interface {
	GetRules(key string) ([]models.Rule, bool)
	SetRules(key string, rules []models.Rule)
	ClearAllRules()
}
