package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // database and document loading
	PhaseResolve Phase = "resolve" // symbol and type lookups
	PhaseLayout  Phase = "layout"  // offset and size computation
	PhaseScript  Phase = "script"  // descriptor script handling
	PhaseReport  Phase = "report"  // report emission
	PhaseVerify  Phase = "verify"  // comparison against debug builds
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindDuplicate     Kind = "duplicate"
	KindMalformedPath Kind = "malformed_path"
	KindMissingAttr   Kind = "missing_attr"
	KindInvalidTag    Kind = "invalid_tag"
	KindInvalidData   Kind = "invalid_data"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindNotSingleBit  Kind = "not_single_bit"
	KindCycle         Kind = "cycle"
	KindUnsupported   Kind = "unsupported"
)

// Error is the structured error type used throughout layoutkit
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	TypeName string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.TypeName != "" {
		b.WriteString(": type ")
		b.WriteString(e.TypeName)
	}

	if e.Detail != "" {
		if e.TypeName != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the symbol path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the type name
func (b *Builder) Type(t string) *Builder {
	b.err.TypeName = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Duplicate creates a duplicate-definition error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("%s %q defined more than once", what, name),
	}
}

// MalformedPath creates a malformed path error
func MalformedPath(phase Phase, input string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedPath,
		Detail: fmt.Sprintf("malformed path %q", input),
		Value:  input,
	}
}

// MissingAttr creates a missing attribute error
func MissingAttr(phase Phase, tag, attr string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMissingAttr,
		Detail: fmt.Sprintf("%s element requires a %q attribute", tag, attr),
	}
}

// InvalidTag creates an invalid tag error
func InvalidTag(phase Phase, tag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidTag,
		Detail: fmt.Sprintf("invalid tag name %q", tag),
		Value:  tag,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// NotSingleBit creates an error for flags wider than one bit
func NotSingleBit(phase Phase, flag string, count uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotSingleBit,
		Detail: fmt.Sprintf("%s is not a single bit flag (width %d)", flag, count),
		Value:  flag,
	}
}

// Cycle creates a type-cycle error
func Cycle(phase Phase, typeName string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindCycle,
		TypeName: typeName,
		Detail:   "recursive type definition",
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a database loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a document parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
