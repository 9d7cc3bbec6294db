// Package codecerr defines the error taxonomy shared by the schema,
// builder, source, codec, and trace packages.
package codecerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a codec error. Callers switch on Kind rather than
// inspecting error strings.
type Kind uint8

const (
	// Internal indicates an invariant violation in this package. Its
	// presence means a bug here, not bad input.
	Internal Kind = iota
	// SchemaInvalid indicates a malformed DSL/JSON schema or an
	// impossible combination of DataType parameters.
	SchemaInvalid
	// SchemaMismatch indicates an event did not match the type the
	// builder or source expected at this position.
	SchemaMismatch
	// OutOfRange indicates numeric narrowing, decimal precision, or
	// dictionary-key overflow.
	OutOfRange
	// Parse indicates an unparsable date string or decimal literal.
	Parse
	// StructuralError indicates unbalanced Start/End markers, a
	// missing required field, or a duplicate field.
	StructuralError
	// Unsupported indicates a DataType present in the DSL but not
	// implemented by the targeted builder/source family.
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case Internal:
		return "internal"
	case SchemaInvalid:
		return "schema invalid"
	case SchemaMismatch:
		return "schema mismatch"
	case OutOfRange:
		return "out of range"
	case Parse:
		return "parse"
	case StructuralError:
		return "structural error"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is a codec error with enough context to locate the offending
// column and row without re-running the operation.
type Error struct {
	Kind   Kind
	Column string // name of the field the error was raised in, "" if not column-scoped
	Row    int    // -1 if not row-scoped
	cause  error
}

func (e *Error) Error() string {
	switch {
	case e.Column != "" && e.Row >= 0:
		return fmt.Sprintf("%s: column %q row %d: %v", e.Kind, e.Column, e.Row, e.cause)
	case e.Column != "":
		return fmt.Sprintf("%s: column %q: %v", e.Kind, e.Column, e.cause)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Format implements fmt.Formatter so that "%+v" prints the full
// pkg/errors stack trace attached to the underlying cause.
func (e *Error) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s\n%+v", e.Error(), e.cause)
		return
	}
	fmt.Fprint(s, e.Error())
}

// New builds an Error of the given kind from a format string, attaching
// a stack trace via pkg/errors.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Row: -1, cause: errors.Errorf(format, args...)}
}

// Wrap attaches kind, a message and a stack trace to an existing error.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Row: -1, cause: errors.Wrapf(cause, format, args...)}
}

// WithColumn returns a copy of e annotated with the offending column
// name, unless one is already set.
func (e *Error) WithColumn(name string) *Error {
	if e.Column != "" {
		return e
	}
	cp := *e
	cp.Column = name
	return &cp
}

// WithRow returns a copy of e annotated with the offending row index,
// unless one is already set.
func (e *Error) WithRow(row int) *Error {
	if e.Row >= 0 {
		return e
	}
	cp := *e
	cp.Row = row
	return &cp
}

// Is reports whether err is a codecerr.Error of the given kind,
// following the error chain.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ce, ok := err.(*Error); ok {
			e = ce
			break
		}
		err = errors.Unwrap(err)
	}
	return e != nil && e.Kind == kind
}
