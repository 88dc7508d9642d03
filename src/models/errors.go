package models

import (
	"errors"
	"fmt"
)

// ErrRuleDisabled is returned when a manual apply targets a disabled rule.
var ErrRuleDisabled = errors.New("rule is disabled")

// ValidationError rejects a malformed rule or entry before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// PersistenceError wraps a failed entry write or audit append.
type PersistenceError struct {
	EntryID int64
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist entry %d: %v", e.EntryID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConfigurationWarning flags an action the engine cannot execute. The action
// is skipped; sibling actions and rules still run.
type ConfigurationWarning struct {
	RuleID     int64
	Index      int
	ActionType string
}

func (w ConfigurationWarning) Error() string {
	return fmt.Sprintf("rule %d action %d: unknown action type %q", w.RuleID, w.Index, w.ActionType)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
