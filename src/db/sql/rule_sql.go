package db

import (
	"context"
	"errors"
	"ledger-rules/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ruleColumns = `id, name, priority, is_enabled, apply_on_create, apply_on_edit, apply_on_import,
	stop_after_apply, conditions, actions, run_count, last_run_at, created_at, updated_at`

func scanRule(row pgx.Row) (models.Rule, error) {
	var r models.Rule
	err := row.Scan(&r.ID, &r.Name, &r.Priority, &r.IsEnabled, &r.ApplyOnCreate, &r.ApplyOnEdit, &r.ApplyOnImport,
		&r.StopAfterApply, &r.Conditions, &r.Actions, &r.RunCount, &r.LastRunAt, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func ruleNotFound(err error, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.NotFoundError{Resource: "rule", ID: id}
	}
	return err
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func CreateRule(ctx context.Context, pool *pgxpool.Pool, rule models.Rule) (models.Rule, error) {
	query := `
		INSERT INTO rules (name, priority, is_enabled, apply_on_create, apply_on_edit, apply_on_import,
			stop_after_apply, conditions, actions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + ruleColumns
	return scanRule(pool.QueryRow(ctx, query, rule.Name, rule.Priority, rule.IsEnabled, rule.ApplyOnCreate,
		rule.ApplyOnEdit, rule.ApplyOnImport, rule.StopAfterApply, nonNil(rule.Conditions), nonNil(rule.Actions)))
}

func GetRuleByID(ctx context.Context, pool *pgxpool.Pool, ruleID int64) (models.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE id = $1 AND deleted_at IS NULL`
	r, err := scanRule(pool.QueryRow(ctx, query, ruleID))
	if err != nil {
		return models.Rule{}, ruleNotFound(err, ruleID)
	}
	return r, nil
}

// RuleExists ignores deleted_at so the audit log of a deleted rule stays
// readable.
func RuleExists(ctx context.Context, pool *pgxpool.Pool, ruleID int64) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rules WHERE id = $1)`, ruleID).Scan(&exists)
	return exists, err
}

// GetAllRules returns live rules by (priority, id). limit <= 0 means all.
func GetAllRules(ctx context.Context, pool *pgxpool.Pool, limit, offset int) ([]models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE deleted_at IS NULL
		ORDER BY priority, id
		LIMIT $1 OFFSET $2
	`
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}
	rows, err := pool.Query(ctx, query, limitArg, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func UpdateRule(ctx context.Context, pool *pgxpool.Pool, ruleID int64, rule models.Rule) (models.Rule, error) {
	query := `
		UPDATE rules
		SET name = $1, priority = $2, is_enabled = $3, apply_on_create = $4, apply_on_edit = $5,
			apply_on_import = $6, stop_after_apply = $7, conditions = $8, actions = $9, updated_at = NOW()
		WHERE id = $10 AND deleted_at IS NULL
		RETURNING ` + ruleColumns
	r, err := scanRule(pool.QueryRow(ctx, query, rule.Name, rule.Priority, rule.IsEnabled, rule.ApplyOnCreate,
		rule.ApplyOnEdit, rule.ApplyOnImport, rule.StopAfterApply, nonNil(rule.Conditions), nonNil(rule.Actions), ruleID))
	if err != nil {
		return models.Rule{}, ruleNotFound(err, ruleID)
	}
	return r, nil
}

func SetRuleEnabled(ctx context.Context, pool *pgxpool.Pool, ruleID int64, enabled bool) (models.Rule, error) {
	query := `
		UPDATE rules SET is_enabled = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING ` + ruleColumns
	r, err := scanRule(pool.QueryRow(ctx, query, enabled, ruleID))
	if err != nil {
		return models.Rule{}, ruleNotFound(err, ruleID)
	}
	return r, nil
}

// DeleteRule hides the rule. The row stays so execution records keep
// pointing at it.
func DeleteRule(ctx context.Context, pool *pgxpool.Pool, ruleID int64) error {
	query := `UPDATE rules SET deleted_at = NOW(), is_enabled = FALSE WHERE id = $1 AND deleted_at IS NULL`
	cmd, err := pool.Exec(ctx, query, ruleID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &models.NotFoundError{Resource: "rule", ID: ruleID}
	}
	return nil
}
