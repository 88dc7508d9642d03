package rules

import (
	"ledger-rules/src/models"
	"strings"

	"golang.org/x/text/cases"
)

// Matches reports whether entry satisfies every condition of rule. A rule
// without conditions matches unconditionally.
func Matches(rule models.Rule, entry models.Entry) bool {
	for _, cond := range rule.Conditions {
		if !evaluateCondition(cond, entry) {
			return false
		}
	}
	return true
}

func evaluateCondition(cond models.Condition, entry models.Entry) bool {
	switch cond.Field {
	case models.FieldDescricao:
		if cond.Op != models.OpContains {
			return false
		}
		return strings.Contains(foldCase(entry.Descricao), foldCase(cond.Value.String()))
	case models.FieldTipo, models.FieldCategoria, models.FieldStatus, models.FieldMetodo:
		if cond.Op != models.OpEq {
			return false
		}
		return stringField(entry, cond.Field) == cond.Value.String()
	case models.FieldValor:
		bound, err := cond.Value.Decimal()
		if err != nil {
			return false
		}
		switch cond.Op {
		case models.OpGte:
			return entry.Valor.GreaterThanOrEqual(bound)
		case models.OpLte:
			return entry.Valor.LessThanOrEqual(bound)
		}
		return false
	default:
		return false
	}
}

// foldCase is a locale-neutral case fold. Accents are left alone.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

func stringField(entry models.Entry, field string) string {
	switch field {
	case models.FieldTipo:
		return entry.Tipo
	case models.FieldCategoria:
		return entry.Categoria
	case models.FieldStatus:
		return entry.Status
	case models.FieldMetodo:
		return entry.Metodo
	case models.FieldDescricao:
		return entry.Descricao
	case models.FieldTags:
		return entry.Tags
	}
	return ""
}
