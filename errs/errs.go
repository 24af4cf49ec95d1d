// Package errs defines the engine's error taxonomy: one concrete type per
// failure mode surfaced to callers, grouped into the three severity bands
// described by the engine's error handling design.
package errs

import (
	"errors"
	"fmt"
)

// Band classifies an error by how the caller should react to it.
type Band int

const (
	// BandA is a programmer error in the submitted SQL: bad syntax, an
	// unresolvable name, a misuse of aggregates. No state changed.
	BandA Band = iota
	// BandB is a data or constraint violation: the statement was valid
	// SQL but its effect conflicts with the schema or current data.
	BandB
	// BandC is an environment failure (disk I/O). The atomic rename
	// durability contract guarantees pre-statement state survives it.
	BandC
)

func (b Band) String() string {
	switch b {
	case BandA:
		return "A"
	case BandB:
		return "B"
	case BandC:
		return "C"
	}
	return "?"
}

// Kind identifies which taxonomy entry an error belongs to.
type Kind int

const (
	KindSyntaxError Kind = iota
	KindUnknownTable
	KindUnknownColumn
	KindAmbiguousColumn
	KindTypeMismatch
	KindNullViolation
	KindUniqueViolation
	KindFKViolation
	KindRefusedDrop
	KindRefusedDelete
	KindNoSuchIndex
	KindAggregateMisuse
	KindIOError
)

var kindNames = map[Kind]string{
	KindSyntaxError:     "SyntaxError",
	KindUnknownTable:    "UnknownTable",
	KindUnknownColumn:   "UnknownColumn",
	KindAmbiguousColumn: "AmbiguousColumn",
	KindTypeMismatch:    "TypeMismatch",
	KindNullViolation:   "NullViolation",
	KindUniqueViolation: "UniqueViolation",
	KindFKViolation:     "FKViolation",
	KindRefusedDrop:     "RefusedDrop",
	KindRefusedDelete:   "RefusedDelete",
	KindNoSuchIndex:     "NoSuchIndex",
	KindAggregateMisuse: "AggregateMisuse",
	KindIOError:         "IOError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "UnknownError"
}

var kindBand = map[Kind]Band{
	KindSyntaxError:     BandA,
	KindUnknownTable:    BandA,
	KindUnknownColumn:   BandA,
	KindAmbiguousColumn: BandA,
	KindAggregateMisuse: BandA,
	KindTypeMismatch:    BandB,
	KindNullViolation:   BandB,
	KindUniqueViolation: BandB,
	KindFKViolation:     BandB,
	KindRefusedDrop:     BandB,
	KindRefusedDelete:   BandB,
	KindNoSuchIndex:     BandB,
	KindIOError:         BandC,
}

// Error is the concrete error type for every taxonomy entry. Callers
// distinguish cases with errors.As and the Kind/Band accessors rather
// than string matching.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Band reports the error's severity band.
func (e *Error) Band() Band { return kindBand[e.Kind] }

func new_(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

func SyntaxError(pos int, format string, args ...any) *Error {
	return new_(KindSyntaxError, "position %d: %s", pos, fmt.Sprintf(format, args...))
}

func UnknownTable(name string) *Error {
	return new_(KindUnknownTable, "no such table %q", name)
}

func UnknownColumn(name string) *Error {
	return new_(KindUnknownColumn, "no such column %q", name)
}

func AmbiguousColumn(name string) *Error {
	return new_(KindAmbiguousColumn, "column %q is ambiguous", name)
}

func TypeMismatch(format string, args ...any) *Error {
	return new_(KindTypeMismatch, format, args...)
}

func NullViolation(column string) *Error {
	return new_(KindNullViolation, "column %q may not be NULL", column)
}

func UniqueViolation(index, value string) *Error {
	return new_(KindUniqueViolation, "value %s already present in unique index %q", value, index)
}

func FKViolation(column, table string, value string) *Error {
	return new_(KindFKViolation, "value %s for column %q has no matching row in %q", value, column, table)
}

func RefusedDrop(table, referencer string) *Error {
	return new_(KindRefusedDrop, "table %q is referenced by foreign key in %q", table, referencer)
}

func RefusedDelete(table, referencer string) *Error {
	return new_(KindRefusedDelete, "row in %q is referenced by foreign key in %q", table, referencer)
}

func NoSuchIndex(name string) *Error {
	return new_(KindNoSuchIndex, "no such index %q", name)
}

func AggregateMisuse(column string) *Error {
	return new_(KindAggregateMisuse, "column %q must appear in GROUP BY or be used in an aggregate", column)
}

func IOError(op string, err error) *Error {
	return &Error{Kind: KindIOError, Message: fmt.Sprintf("%s: %v", op, err), Wrapped: err}
}

// IsBandA, IsBandB and IsBandC classify an arbitrary error by band. A
// non-taxonomy error is none of the three.
func IsBandA(err error) bool { return bandOf(err) == BandA }
func IsBandB(err error) bool { return bandOf(err) == BandB }
func IsBandC(err error) bool { return bandOf(err) == BandC }

func bandOf(err error) Band {
	var e *Error
	if errors.As(err, &e) {
		return e.Band()
	}
	return -1
}
