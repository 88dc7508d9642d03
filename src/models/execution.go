package models

import "time"

type Trigger string

const (
	TriggerCreate      Trigger = "create"
	TriggerEdit        Trigger = "edit"
	TriggerImport      Trigger = "import"
	TriggerManualApply Trigger = "manual_apply"
)

func (t Trigger) Valid() bool {
	switch t {
	case TriggerCreate, TriggerEdit, TriggerImport, TriggerManualApply:
		return true
	}
	return false
}

// FieldChange is the before/after pair of one altered entry field.
type FieldChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Diff maps entry field name to its change. Only altered fields are present.
type Diff map[string]FieldChange

func (d Diff) Empty() bool { return len(d) == 0 }

// ExecutionRecord is one audit row: a rule that changed an entry.
type ExecutionRecord struct {
	ID        int64     `json:"id"`
	RuleID    int64     `json:"rule_id"`
	EntryID   int64     `json:"entry_id"`
	Trigger   Trigger   `json:"trigger"`
	Changes   Diff      `json:"changes"`
	CreatedAt time.Time `json:"created_at"`
}
