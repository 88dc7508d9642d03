package models

import (
	"time"
)

const (
	DefaultRuleName     = "Nova regra"
	DefaultRulePriority = 100
)

type Rule struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Priority       int         `json:"priority"`
	IsEnabled      bool        `json:"is_enabled"`
	ApplyOnCreate  bool        `json:"apply_on_create"`
	ApplyOnEdit    bool        `json:"apply_on_edit"`
	ApplyOnImport  bool        `json:"apply_on_import"`
	StopAfterApply bool        `json:"stop_after_apply"`
	Conditions     []Condition `json:"conditions"`
	Actions        []Action    `json:"actions"`
	RunCount       int         `json:"run_count"`
	LastRunAt      *time.Time  `json:"last_run_at"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// AppliesTo reports whether the rule is gated in for trigger. Manual apply
// ignores the apply_on_* flags.
func (r Rule) AppliesTo(trigger Trigger) bool {
	if !r.IsEnabled {
		return false
	}
	switch trigger {
	case TriggerCreate:
		return r.ApplyOnCreate
	case TriggerEdit:
		return r.ApplyOnEdit
	case TriggerImport:
		return r.ApplyOnImport
	case TriggerManualApply:
		return true
	default:
		return false
	}
}

// RuleDraft is the client-settable part of a rule. Pointer fields distinguish
// "omitted" from the zero value so defaults can be applied.
type RuleDraft struct {
	Name           string      `json:"name"`
	Priority       *int        `json:"priority"`
	IsEnabled      *bool       `json:"is_enabled"`
	ApplyOnCreate  *bool       `json:"apply_on_create"`
	ApplyOnEdit    *bool       `json:"apply_on_edit"`
	ApplyOnImport  *bool       `json:"apply_on_import"`
	StopAfterApply *bool       `json:"stop_after_apply"`
	Conditions     []Condition `json:"conditions"`
	Actions        []Action    `json:"actions"`
}
