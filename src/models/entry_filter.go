package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EntryFilter selects entries for batch preview/apply. Zero-valued fields do
// not filter. Categoria, Status and Metodo match ignoring case, since rule
// actions may write them with capitals. Limit is expected to be clamped by
// the caller.
type EntryFilter struct {
	Start     *Date
	End       *Date
	Tipo      string
	Categoria string
	Status    string
	Metodo    string
	Min       *decimal.Decimal
	Max       *decimal.Decimal
	Limit     int
}

// Matches applies the filter to a single entry. Stores that cannot push the
// filter down use it directly.
func (f EntryFilter) Matches(e Entry) bool {
	if f.Start != nil && e.Data.Before(f.Start.Time) {
		return false
	}
	if f.End != nil && e.Data.After(f.End.Time) {
		return false
	}
	if f.Tipo != "" && e.Tipo != f.Tipo {
		return false
	}
	if f.Categoria != "" && !strings.EqualFold(e.Categoria, f.Categoria) {
		return false
	}
	if f.Status != "" && !strings.EqualFold(e.Status, f.Status) {
		return false
	}
	if f.Metodo != "" && !strings.EqualFold(e.Metodo, f.Metodo) {
		return false
	}
	if f.Min != nil && e.Valor.LessThan(*f.Min) {
		return false
	}
	if f.Max != nil && e.Valor.GreaterThan(*f.Max) {
		return false
	}
	return true
}
