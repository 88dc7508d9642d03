package rules

import (
	"fmt"
	"ledger-rules/src/models"
	"strings"
)

// allowedOps lists the operators each condition field accepts.
var allowedOps = map[string]map[string]bool{
	models.FieldDescricao: {models.OpContains: true},
	models.FieldTipo:      {models.OpEq: true},
	models.FieldCategoria: {models.OpEq: true},
	models.FieldStatus:    {models.OpEq: true},
	models.FieldMetodo:    {models.OpEq: true},
	models.FieldValor:     {models.OpGte: true, models.OpLte: true},
}

var allowedActions = map[string]bool{
	models.ActionSetCategory:          true,
	models.ActionSetStatus:            true,
	models.ActionSetTags:              true,
	models.ActionSetDescriptionPrefix: true,
	models.ActionSetMethod:            true,
}

const maxRuleNameLen = 140

// ruleFromDraft validates draft and fills in defaults. Engine-owned fields
// (id, run_count, last_run_at) are left zero.
func ruleFromDraft(draft models.RuleDraft) (models.Rule, error) {
	rule := models.Rule{
		Name:           strings.TrimSpace(draft.Name),
		Priority:       models.DefaultRulePriority,
		IsEnabled:      boolOr(draft.IsEnabled, true),
		ApplyOnCreate:  boolOr(draft.ApplyOnCreate, true),
		ApplyOnEdit:    boolOr(draft.ApplyOnEdit, false),
		ApplyOnImport:  boolOr(draft.ApplyOnImport, false),
		StopAfterApply: boolOr(draft.StopAfterApply, false),
	}
	if rule.Name == "" {
		rule.Name = models.DefaultRuleName
	}
	if len(rule.Name) > maxRuleNameLen {
		return models.Rule{}, &models.ValidationError{Field: "name", Reason: fmt.Sprintf("must be at most %d characters", maxRuleNameLen)}
	}
	if draft.Priority != nil {
		rule.Priority = *draft.Priority
	}

	conditions, err := validateConditions(draft.Conditions)
	if err != nil {
		return models.Rule{}, err
	}
	actions, err := validateActions(draft.Actions)
	if err != nil {
		return models.Rule{}, err
	}
	rule.Conditions = conditions
	rule.Actions = actions
	return rule, nil
}

func validateConditions(in []models.Condition) ([]models.Condition, error) {
	out := make([]models.Condition, 0, len(in))
	for i, c := range in {
		c.Field = strings.ToLower(strings.TrimSpace(c.Field))
		c.Op = strings.ToLower(strings.TrimSpace(c.Op))
		ops, ok := allowedOps[c.Field]
		if !ok {
			return nil, &models.ValidationError{Field: fmt.Sprintf("conditions[%d].field", i), Reason: fmt.Sprintf("unknown field %q", c.Field)}
		}
		if !ops[c.Op] {
			return nil, &models.ValidationError{Field: fmt.Sprintf("conditions[%d].op", i), Reason: fmt.Sprintf("operator %q not supported for %s", c.Op, c.Field)}
		}
		if c.Value.Kind() == models.ValueInvalid {
			return nil, &models.ValidationError{Field: fmt.Sprintf("conditions[%d].value", i), Reason: "must be a string or number"}
		}
		if c.Field == models.FieldValor {
			d, err := c.Value.Decimal()
			if err != nil {
				return nil, &models.ValidationError{Field: fmt.Sprintf("conditions[%d].value", i), Reason: "must be numeric"}
			}
			c.Value = models.NumberValue(d)
		}
		out = append(out, c)
	}
	return out, nil
}

func validateActions(in []models.Action) ([]models.Action, error) {
	if len(in) == 0 {
		return nil, &models.ValidationError{Field: "actions", Reason: "at least one action is required"}
	}
	out := make([]models.Action, 0, len(in))
	for i, a := range in {
		a.Type = strings.ToLower(strings.TrimSpace(a.Type))
		if !allowedActions[a.Type] {
			return nil, &models.ValidationError{Field: fmt.Sprintf("actions[%d].type", i), Reason: fmt.Sprintf("unknown action type %q", a.Type)}
		}
		if a.Value.Kind() == models.ValueInvalid {
			return nil, &models.ValidationError{Field: fmt.Sprintf("actions[%d].value", i), Reason: "must be a string or number"}
		}
		out = append(out, a)
	}
	return out, nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
