package rules

import (
	"ledger-rules/src/models"
	"strings"
	"unicode"
)

// tagSeparator joins stored tags.
const tagSeparator = ", "

// Apply runs actions in order against a copy of entry and returns the mutated
// copy with the diff of every field whose final value differs from the input.
// Unknown action types are skipped and reported as warnings.
func Apply(actions []models.Action, entry models.Entry) (models.Entry, models.Diff, []models.ConfigurationWarning) {
	before := entry
	after := entry
	var warnings []models.ConfigurationWarning

	for i, action := range actions {
		value := action.Value.String()
		switch action.Type {
		case models.ActionSetCategory:
			after.Categoria = value
		case models.ActionSetStatus:
			after.Status = value
		case models.ActionSetMethod:
			after.Metodo = value
		case models.ActionSetTags:
			after.Tags = mergeTags(after.Tags, value)
		case models.ActionSetDescriptionPrefix:
			if value != "" && !strings.HasPrefix(after.Descricao, value) {
				after.Descricao = value + after.Descricao
			}
		default:
			warnings = append(warnings, models.ConfigurationWarning{Index: i, ActionType: action.Type})
		}
	}

	return after, diffEntries(before, after), warnings
}

var diffFields = []string{
	models.FieldDescricao,
	models.FieldCategoria,
	models.FieldStatus,
	models.FieldMetodo,
	models.FieldTags,
}

func diffEntries(before, after models.Entry) models.Diff {
	diff := models.Diff{}
	for _, field := range diffFields {
		b, a := stringField(before, field), stringField(after, field)
		if b != a {
			diff[field] = models.FieldChange{Before: b, After: a}
		}
	}
	return diff
}

// mergeTags unions the tags in add into existing. Order of first appearance
// wins and duplicates are collapsed case-insensitively. When nothing new is
// added existing is returned untouched, so re-applying a rule never rewrites
// the stored string.
func mergeTags(existing, add string) string {
	current := splitTags(existing)
	seen := make(map[string]struct{}, len(current))
	for _, t := range current {
		seen[strings.ToLower(t)] = struct{}{}
	}

	merged := current
	added := false
	for _, t := range splitTags(add) {
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, t)
		added = true
	}
	if !added {
		return existing
	}
	return strings.Join(dedupeTags(merged), tagSeparator)
}

// splitTags accepts comma and/or whitespace separated lists.
func splitTags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// NormalizeTags rewrites a free-form tag list into the stored form.
func NormalizeTags(s string) string {
	return strings.Join(dedupeTags(splitTags(s)), tagSeparator)
}
