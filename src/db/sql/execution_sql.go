package db

import (
	"context"
	"fmt"
	"ledger-rules/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordExecution writes the rule-managed entry fields, appends the
// execution record and bumps the rule's counters in one transaction.
func RecordExecution(ctx context.Context, pool *pgxpool.Pool, entry models.Entry, rec models.ExecutionRecord) (models.ExecutionRecord, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return models.ExecutionRecord{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE entries
		SET descricao = $1, categoria = $2, status = $3, metodo = $4, tags = $5, updated_at = $6
		WHERE id = $7
	`, entry.Descricao, nullable(entry.Categoria), nullable(entry.Status), nullable(entry.Metodo),
		nullable(entry.Tags), rec.CreatedAt, entry.ID)
	if err != nil {
		return models.ExecutionRecord{}, fmt.Errorf("update entry: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ExecutionRecord{}, &models.NotFoundError{Resource: "entry", ID: entry.ID}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rule_executions (rule_id, entry_id, trigger, changes, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, rec.RuleID, rec.EntryID, string(rec.Trigger), rec.Changes, rec.CreatedAt).Scan(&rec.ID)
	if err != nil {
		return models.ExecutionRecord{}, fmt.Errorf("insert execution: %w", err)
	}

	cmd, err = tx.Exec(ctx, `
		UPDATE rules SET run_count = run_count + 1, last_run_at = $1
		WHERE id = $2
	`, rec.CreatedAt, rec.RuleID)
	if err != nil {
		return models.ExecutionRecord{}, fmt.Errorf("bump rule counters: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return models.ExecutionRecord{}, &models.NotFoundError{Resource: "rule", ID: rec.RuleID}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.ExecutionRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

func GetExecutionsForRule(ctx context.Context, pool *pgxpool.Pool, ruleID int64, limit int) ([]models.ExecutionRecord, error) {
	query := `
		SELECT id, rule_id, entry_id, trigger, changes, created_at
		FROM rule_executions
		WHERE rule_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := pool.Query(ctx, query, ruleID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExecutionRecord, error) {
		var (
			rec     models.ExecutionRecord
			trigger string
		)
		err := row.Scan(&rec.ID, &rec.RuleID, &rec.EntryID, &trigger, &rec.Changes, &rec.CreatedAt)
		rec.Trigger = models.Trigger(trigger)
		return rec, err
	})
}
