package rules_test

import (
	"context"
	"ledger-rules/src/db/memory"
	"ledger-rules/src/models"
	"ledger-rules/src/rules"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, store rules.Store) *rules.Engine {
	t.Helper()
	return rules.New(store, nil, rules.Options{})
}

func seedEntry(t *testing.T, store *memory.Store, e models.Entry) models.Entry {
	t.Helper()
	if e.Data.IsZero() {
		e.Data = models.NewDate(2024, time.March, 10)
	}
	if e.Tipo == "" {
		e.Tipo = models.TipoDespesa
	}
	created, err := store.CreateEntry(context.Background(), e)
	require.NoError(t, err)
	return created
}

func createRule(t *testing.T, engine *rules.Engine, draft models.RuleDraft) models.Rule {
	t.Helper()
	rule, err := engine.Rules.Create(context.Background(), draft)
	require.NoError(t, err)
	return rule
}

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func str(s string) models.Value { return models.StringValue(s) }

func act(typ, value string) models.Action {
	return models.Action{Type: typ, Value: str(value)}
}

func condition(field, op, value string) models.Condition {
	return models.Condition{Field: field, Op: op, Value: str(value)}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// uberRule is the transport categorization rule used across tests.
func uberRule() models.RuleDraft {
	return models.RuleDraft{
		Name: "Uber",
		Conditions: []models.Condition{
			condition(models.FieldDescricao, models.OpContains, "uber"),
			condition(models.FieldTipo, models.OpEq, models.TipoDespesa),
		},
		Actions: []models.Action{
			act(models.ActionSetCategory, "transporte"),
			act(models.ActionSetTags, "mobilidade"),
		},
	}
}
