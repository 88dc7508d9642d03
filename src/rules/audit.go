package rules

import (
	"context"
	"ledger-rules/src/models"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

// AuditLog is the read side of the execution history.
type AuditLog struct {
	store AuditStore
}

func NewAuditLog(store AuditStore) *AuditLog {
	return &AuditLog{store: store}
}

// Log returns the most recent executions of ruleID, newest first. Deleted
// rules keep their history.
func (a *AuditLog) Log(ctx context.Context, ruleID int64, limit int) ([]models.ExecutionRecord, error) {
	exists, err := a.store.RuleExists(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &models.NotFoundError{Resource: "rule", ID: ruleID}
	}
	limit = Limits{Default: DefaultLogLimit, Max: MaxLogLimit}.Clamp(limit)
	records, err := a.store.ListExecutions(ctx, ruleID, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.ExecutionRecord{}
	}
	return records, nil
}
