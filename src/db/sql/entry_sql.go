package db

import (
	"context"
	"errors"
	"fmt"
	"ledger-rules/src/models"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const entryColumns = `id, data, tipo, descricao, valor::text, COALESCE(categoria, ''), COALESCE(status, ''),
	COALESCE(metodo, ''), COALESCE(tags, ''), created_at, updated_at`

func scanEntry(row pgx.Row) (models.Entry, error) {
	var (
		e     models.Entry
		valor string
	)
	err := row.Scan(&e.ID, &e.Data.Time, &e.Tipo, &e.Descricao, &valor, &e.Categoria, &e.Status,
		&e.Metodo, &e.Tags, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return models.Entry{}, err
	}
	e.Valor, err = decimal.NewFromString(valor)
	if err != nil {
		return models.Entry{}, fmt.Errorf("entry %d: invalid valor %q: %w", e.ID, valor, err)
	}
	return e, nil
}

func entryNotFound(err error, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.NotFoundError{Resource: "entry", ID: id}
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func CreateEntry(ctx context.Context, pool *pgxpool.Pool, entry models.Entry) (models.Entry, error) {
	query := `
		INSERT INTO entries (data, tipo, descricao, valor, categoria, status, metodo, tags)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
		RETURNING ` + entryColumns
	return scanEntry(pool.QueryRow(ctx, query, entry.Data.Time, entry.Tipo, entry.Descricao, entry.Valor.String(),
		nullable(entry.Categoria), nullable(entry.Status), nullable(entry.Metodo), nullable(entry.Tags)))
}

func UpdateEntry(ctx context.Context, pool *pgxpool.Pool, entry models.Entry) (models.Entry, error) {
	query := `
		UPDATE entries
		SET data = $1, tipo = $2, descricao = $3, valor = $4::numeric, categoria = $5, status = $6,
			metodo = $7, tags = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + entryColumns
	e, err := scanEntry(pool.QueryRow(ctx, query, entry.Data.Time, entry.Tipo, entry.Descricao, entry.Valor.String(),
		nullable(entry.Categoria), nullable(entry.Status), nullable(entry.Metodo), nullable(entry.Tags), entry.ID))
	if err != nil {
		return models.Entry{}, entryNotFound(err, entry.ID)
	}
	return e, nil
}

func GetEntryByID(ctx context.Context, pool *pgxpool.Pool, entryID int64) (models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`
	e, err := scanEntry(pool.QueryRow(ctx, query, entryID))
	if err != nil {
		return models.Entry{}, entryNotFound(err, entryID)
	}
	return e, nil
}

// GetEntries pushes the filter down to SQL and orders newest first.
func GetEntries(ctx context.Context, pool *pgxpool.Pool, filter models.EntryFilter) ([]models.Entry, error) {
	where, args := entryFilterClause(filter)
	query := `SELECT ` + entryColumns + ` FROM entries` + where + ` ORDER BY data DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func entryFilterClause(f models.EntryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(expr string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	if f.Start != nil {
		add("data >= $%d", f.Start.Time)
	}
	if f.End != nil {
		add("data <= $%d", f.End.Time)
	}
	if f.Tipo != "" {
		add("tipo = $%d", f.Tipo)
	}
	if f.Categoria != "" {
		add("lower(categoria) = lower($%d)", f.Categoria)
	}
	if f.Status != "" {
		add("lower(status) = lower($%d)", f.Status)
	}
	if f.Metodo != "" {
		add("lower(metodo) = lower($%d)", f.Metodo)
	}
	if f.Min != nil {
		add("valor >= $%d::numeric", f.Min.String())
	}
	if f.Max != nil {
		add("valor <= $%d::numeric", f.Max.String())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
