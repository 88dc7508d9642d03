package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind tells how a Value arrived on the wire.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueInvalid
)

// Value is a condition or action operand. Clients send either a JSON string
// or a JSON number; anything else is kept as ValueInvalid so validation can
// reject it with a proper message instead of failing the whole decode.
type Value struct {
	raw  string
	kind ValueKind
}

func StringValue(s string) Value {
	return Value{raw: s, kind: ValueString}
}

func NumberValue(d decimal.Decimal) Value {
	return Value{raw: d.String(), kind: ValueNumber}
}

func (v Value) Kind() ValueKind { return v.kind }

// String returns the operand as text. Numbers are rendered in their wire form.
func (v Value) String() string { return v.raw }

// Decimal coerces the operand to a decimal. Numeric strings are accepted.
func (v Value) Decimal() (decimal.Decimal, error) {
	if v.kind == ValueInvalid {
		return decimal.Zero, &ValidationError{Field: "value", Reason: "must be a string or number"}
	}
	return decimal.NewFromString(strings.TrimSpace(v.raw))
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueNumber:
		return []byte(v.raw), nil
	case ValueInvalid:
		return []byte(v.raw), nil
	default:
		return json.Marshal(v.raw)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Value{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*v = Value{raw: n.String(), kind: ValueNumber}
	default:
		*v = Value{raw: string(data), kind: ValueInvalid}
	}
	return nil
}
