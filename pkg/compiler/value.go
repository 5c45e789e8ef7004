package compiler

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	NumberValue ValueKind = iota
	StringValue
	BoolValue
)

func (k ValueKind) String() string {
	switch k {
	case NumberValue:
		return "number"
	case StringValue:
		return "string"
	case BoolValue:
		return "bool"
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is a runtime value: exactly one of a float64 number, a string or
// a boolean, selected by Kind.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

func Number(f float64) Value { return Value{Kind: NumberValue, Num: f} }
func String(s string) Value  { return Value{Kind: StringValue, Str: s} }
func Bool(b bool) Value      { return Value{Kind: BoolValue, Bool: b} }

// IsInteger reports whether v is a number with no fractional part.
func (v Value) IsInteger() bool {
	return v.Kind == NumberValue && !math.IsInf(v.Num, 0) && v.Num == math.Trunc(v.Num)
}

// Truthy coerces v to a boolean: non-zero numbers, non-empty strings and
// true are truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case NumberValue:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case StringValue:
		return v.Str != ""
	case BoolValue:
		return v.Bool
	}
	return false
}

// Equal is strict equality: values of different kinds are never equal.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case NumberValue:
		return v.Num == o.Num
	case StringValue:
		return v.Str == o.Str
	case BoolValue:
		return v.Bool == o.Bool
	}
	return false
}

// String formats v the way RG_Print shows it: strings without quotes,
// booleans as true/false, numbers in shortest round-trip form.
func (v Value) String() string {
	switch v.Kind {
	case NumberValue:
		return FormatNumber(v.Num)
	case StringValue:
		return v.Str
	case BoolValue:
		return strconv.FormatBool(v.Bool)
	}
	return "<invalid>"
}

// Operand formats v as a trace operand: booleans as 1/0, strings quoted.
func (v Value) Operand() string {
	switch v.Kind {
	case NumberValue:
		return FormatNumber(v.Num)
	case StringValue:
		return `"` + v.Str + `"`
	case BoolValue:
		if v.Bool {
			return "1"
		}
		return "0"
	}
	return "?"
}

// FormatNumber renders f in shortest round-trip decimal notation.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0" // also folds -0
	case math.Abs(f) >= 1e21 || math.Abs(f) < 1e-6:
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
