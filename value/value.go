// Package value implements the runtime scalar type system: the tagged
// union of values a column can hold, comparison, arithmetic and the
// three-valued boolean logic used by predicate evaluation.
package value

import (
	"fmt"
	"strings"
)

// Kind identifies which case of Value is populated.
type Kind int

const (
	KindNull Kind = iota
	KindInteger
	KindFloat
	KindText
	KindDate
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindText:
		return "TEXT"
	case KindDate:
		return "DATE"
	case KindBoolean:
		return "BOOLEAN"
	}
	return "UNKNOWN"
}

// Date is a calendar date ordered by (Year, Month, Day). No timezone or
// time-of-day component exists in this engine.
type Date struct {
	Year, Month, Day int
}

// Compare orders two dates by (year, month, day).
func (d Date) Compare(o Date) int {
	if d.Year != o.Year {
		return cmpInt(d.Year, o.Year)
	}
	if d.Month != o.Month {
		return cmpInt(d.Month, o.Month)
	}
	return cmpInt(d.Day, o.Day)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Value is the tagged union every cell and every expression result is
// represented as: Integer, Float, Text, Date, Boolean, or Null.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	d    Date
	b    bool
}

// Null is the distinguished value meaning "no value".
var Null = Value{kind: KindNull}

func Integer(i int64) Value  { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Text(s string) Value    { return Value{kind: KindText, s: s} }
func DateOf(d Date) Value    { return Value{kind: KindDate, d: d} }
func Boolean(b bool) Value   { return Value{kind: KindBoolean, b: b} }

func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsNull() bool     { return v.kind == KindNull }
func (v Value) AsInteger() int64 { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsText() string   { return v.s }
func (v Value) AsDate() Date     { return v.d }
func (v Value) AsBool() bool     { return v.b }

// Float64 returns the value widened to float64, for numeric comparison
// and arithmetic between Integer and Float. Only valid for numeric kinds.
func (v Value) Float64() float64 {
	if v.kind == KindInteger {
		return float64(v.i)
	}
	return v.f
}

func (v Value) isNumeric() bool {
	return v.kind == KindInteger || v.kind == KindFloat
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindInteger:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindText:
		return v.s
	case KindDate:
		return v.d.String()
	case KindBoolean:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	}
	return "?"
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// TypeMismatchError reports a comparison or operation attempted between
// incompatible value kinds.
type TypeMismatchError struct {
	Op          string
	Left, Right Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: cannot %s %s and %s", e.Op, e.Left, e.Right)
}

// Compare orders two values of compatible kinds. It returns an error for
// any cross-type comparison other than Integer/Float widening. The
// caller is responsible for routing NULL operands around Compare: SQL
// comparison against NULL never yields a boolean, it yields NULL, which
// Compare cannot express since it's not a three-valued function. Two
// NULLs compare equal (0); NULL against any other kind is a type mismatch.
func Compare(a, b Value) (int, error) {
	if a.isNumeric() && b.isNumeric() {
		af, bf := a.Float64(), b.Float64()
		switch {
		case af < bf:
			return -1, nil
		case af > bf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if a.kind != b.kind {
		return 0, &TypeMismatchError{Op: "compare", Left: a.kind, Right: b.kind}
	}
	switch a.kind {
	case KindText:
		return strings.Compare(a.s, b.s), nil
	case KindDate:
		return a.d.Compare(b.d), nil
	case KindBoolean:
		return cmpInt(boolInt(a.b), boolInt(b.b)), nil
	case KindNull:
		return 0, nil
	}
	return 0, &TypeMismatchError{Op: "compare", Left: a.kind, Right: b.kind}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Add, Sub, Mul and Div implement arithmetic over Integer/Float operands.
// NULL propagates: any NULL operand yields NULL rather than an error.
// Division by zero likewise yields NULL rather than an error, matching
// the engine's preference for NULL propagation over aborting a scan.

func Add(a, b Value) (Value, error) { return arith(a, b, "+") }
func Sub(a, b Value) (Value, error) { return arith(a, b, "-") }
func Mul(a, b Value) (Value, error) { return arith(a, b, "*") }
func Div(a, b Value) (Value, error) { return arith(a, b, "/") }

func arith(a, b Value, op string) (Value, error) {
	if a.IsNull() || b.IsNull() {
		return Null, nil
	}
	if !a.isNumeric() || !b.isNumeric() {
		return Value{}, &TypeMismatchError{Op: "apply " + op + " to", Left: a.kind, Right: b.kind}
	}
	if a.kind == KindInteger && b.kind == KindInteger {
		switch op {
		case "+":
			return Integer(a.i + b.i), nil
		case "-":
			return Integer(a.i - b.i), nil
		case "*":
			return Integer(a.i * b.i), nil
		case "/":
			if b.i == 0 {
				return Null, nil
			}
			return Integer(a.i / b.i), nil
		}
	}
	af, bf := a.Float64(), b.Float64()
	switch op {
	case "+":
		return Float(af + bf), nil
	case "-":
		return Float(af - bf), nil
	case "*":
		return Float(af * bf), nil
	case "/":
		if bf == 0 {
			return Null, nil
		}
		return Float(af / bf), nil
	}
	return Value{}, fmt.Errorf("unknown arithmetic operator %q", op)
}

// Tri is a three-valued truth value: true, false, or unknown (NULL).
type Tri int

const (
	TriFalse Tri = iota
	TriTrue
	TriUnknown
)

// TriFromValue converts a Boolean/Null Value into a Tri. Non-boolean,
// non-null values cannot appear here; the evaluator rejects them earlier.
func TriFromValue(v Value) Tri {
	if v.IsNull() {
		return TriUnknown
	}
	if v.b {
		return TriTrue
	}
	return TriFalse
}

// ValueFromTri converts back to a Boolean/Null Value for storage in a
// result column (e.g. a boolean expression used as a projection item).
func ValueFromTri(t Tri) Value {
	switch t {
	case TriTrue:
		return Boolean(true)
	case TriFalse:
		return Boolean(false)
	default:
		return Null
	}
}

// And implements three-valued AND. NULL AND FALSE is FALSE even though
// one operand is unknown, because FALSE on either side forces the
// result regardless of the other.
func And(a, b Tri) Tri {
	if a == TriFalse || b == TriFalse {
		return TriFalse
	}
	if a == TriUnknown || b == TriUnknown {
		return TriUnknown
	}
	return TriTrue
}

// Or implements three-valued OR. NULL OR TRUE is TRUE for the symmetric
// reason: TRUE on either side forces the result.
func Or(a, b Tri) Tri {
	if a == TriTrue || b == TriTrue {
		return TriTrue
	}
	if a == TriUnknown || b == TriUnknown {
		return TriUnknown
	}
	return TriFalse
}

// Not implements three-valued NOT. NOT NULL is NULL.
func Not(a Tri) Tri {
	switch a {
	case TriTrue:
		return TriFalse
	case TriFalse:
		return TriTrue
	default:
		return TriUnknown
	}
}

// IsTrue reports whether a Tri should pass a WHERE/HAVING filter. SQL
// predicates admit a row only when they evaluate to TRUE, never on
// UNKNOWN/NULL.
func (t Tri) IsTrue() bool { return t == TriTrue }
