// Package cerr defines the engine's typed error taxonomy (spec.md §7).
// Every mutating operation either returns one of these error kinds or
// commits successfully; query operations never fail for a well-formed
// engine.
package cerr

import "fmt"

// Kind is a closed enumeration of the ways an operation can fail.
type Kind int

const (
	// StyleInvalid means the style failed validation: a cycle in the
	// macro graph, a reference to an undefined macro, or similar.
	StyleInvalid Kind = iota
	// JSONShape means a reference or cluster document has a missing,
	// misnamed, or mistyped field.
	JSONShape
	// UnknownOutputFormat means the requested output format name isn't
	// registered with the engine.
	UnknownOutputFormat
	// ClusterNotInFlow means a cluster referenced by an order or preview
	// call is not known to the engine.
	ClusterNotInFlow
	// IndexOutOfRange means a cite index argument exceeds a cluster's
	// cite count.
	IndexOutOfRange
	// Internal means an invariant was violated — a bug, not bad input.
	Internal
)

func (k Kind) String() string {
	switch k {
	case StyleInvalid:
		return "StyleInvalid"
	case JSONShape:
		return "JSONShape"
	case UnknownOutputFormat:
		return "UnknownOutputFormat"
	case ClusterNotInFlow:
		return "ClusterNotInFlow"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by engine operations.
type Error struct {
	Kind Kind
	// Field names the offending field for JSONShape errors.
	Field string
	// Offset/End describe a byte range in the source document for
	// StyleInvalid errors; both zero means "not applicable".
	Offset, End int
	// Severity distinguishes a hard validation failure from a milder
	// warning-grade issue the caller may choose to ignore (StyleInvalid
	// only; other kinds are always hard failures).
	Severity string
	// Hint is an optional human-readable suggestion.
	Hint    string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q)", e.Kind, e.Message, e.Field)
	}
	if e.Offset != 0 || e.End != 0 {
		return fmt.Sprintf("%s: %s (offset %d-%d)", e.Kind, e.Message, e.Offset, e.End)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a plain error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Field builds a JSONShape error pointing at a specific field.
func Field(field, format string, args ...any) *Error {
	return &Error{Kind: JSONShape, Field: field, Message: fmt.Sprintf(format, args...)}
}

// StyleRange builds a StyleInvalid error with a source offset range.
func StyleRange(offset, end int, severity, hint, format string, args ...any) *Error {
	return &Error{Kind: StyleInvalid, Offset: offset, End: end, Severity: severity, Hint: hint, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a *Error of the given kind, so callers can
// write `errors.Is`-style checks via cerr.Is(err, cerr.JSONShape).
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
