package rules

import (
	"ledger-rules/src/models"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validDraft() models.RuleDraft {
	return models.RuleDraft{
		Actions: []models.Action{action(models.ActionSetCategory, "transporte")},
	}
}

func TestRuleFromDraftDefaults(t *testing.T) {
	rule, err := ruleFromDraft(validDraft())
	require.NoError(t, err)
	require.Equal(t, models.DefaultRuleName, rule.Name)
	require.Equal(t, 100, rule.Priority)
	require.True(t, rule.IsEnabled)
	require.True(t, rule.ApplyOnCreate)
	require.False(t, rule.ApplyOnEdit)
	require.False(t, rule.ApplyOnImport)
	require.False(t, rule.StopAfterApply)
	require.Empty(t, rule.Conditions)
	require.Zero(t, rule.RunCount)
	require.Nil(t, rule.LastRunAt)
}

func TestRuleFromDraftKeepsExplicitValues(t *testing.T) {
	priority, off, on := 0, false, true
	draft := validDraft()
	draft.Name = "  Salario  "
	draft.Priority = &priority
	draft.IsEnabled = &off
	draft.ApplyOnCreate = &off
	draft.ApplyOnImport = &on
	draft.StopAfterApply = &on

	rule, err := ruleFromDraft(draft)
	require.NoError(t, err)
	require.Equal(t, "Salario", rule.Name)
	require.Equal(t, 0, rule.Priority)
	require.False(t, rule.IsEnabled)
	require.False(t, rule.ApplyOnCreate)
	require.True(t, rule.ApplyOnImport)
	require.True(t, rule.StopAfterApply)
}

func TestRuleFromDraftRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(d *models.RuleDraft)
		field  string
	}{
		{"no actions", func(d *models.RuleDraft) { d.Actions = nil }, "actions"},
		{"unknown action", func(d *models.RuleDraft) { d.Actions = []models.Action{action("set_color", "x")} }, "actions[0].type"},
		{"unknown field", func(d *models.RuleDraft) {
			d.Conditions = []models.Condition{cond("conta", models.OpEq, models.StringValue("x"))}
		}, "conditions[0].field"},
		{"op not allowed for field", func(d *models.RuleDraft) {
			d.Conditions = []models.Condition{cond(models.FieldTipo, models.OpContains, models.StringValue("x"))}
		}, "conditions[0].op"},
		{"non numeric valor", func(d *models.RuleDraft) {
			d.Conditions = []models.Condition{cond(models.FieldValor, models.OpGte, models.StringValue("lots"))}
		}, "conditions[0].value"},
		{"name too long", func(d *models.RuleDraft) { d.Name = strings.Repeat("x", 141) }, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := validDraft()
			tc.mutate(&draft)
			_, err := ruleFromDraft(draft)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestRuleFromDraftNormalizesConditions(t *testing.T) {
	draft := validDraft()
	draft.Conditions = []models.Condition{
		cond(" Valor ", "GTE", models.StringValue(" 200.50 ")),
		cond("DESCRICAO", "Contains", models.StringValue("uber")),
	}
	draft.Actions = []models.Action{action(" SET_TAGS ", "x")}

	rule, err := ruleFromDraft(draft)
	require.NoError(t, err)
	require.Equal(t, models.FieldValor, rule.Conditions[0].Field)
	require.Equal(t, models.OpGte, rule.Conditions[0].Op)
	require.Equal(t, models.ValueNumber, rule.Conditions[0].Value.Kind())
	require.Equal(t, "200.5", rule.Conditions[0].Value.String())
	require.Equal(t, models.FieldDescricao, rule.Conditions[1].Field)
	require.Equal(t, models.ActionSetTags, rule.Actions[0].Type)
}
