package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which operation produced the error
type Phase string

const (
	PhaseLookup   Phase = "lookup"   // real/virtual translation
	PhaseAllocate Phase = "allocate" // virtual id minting
	PhaseCreate   Phase = "create"   // registration of a new real id
	PhaseRemove   Phase = "remove"   // release of a virtual id
	PhaseUpdate   Phase = "update"   // restart remap
	PhaseRestore  Phase = "restore"  // bulk remap after restart
	PhaseHost     Phase = "host"     // host module registration
	PhaseParse    Phase = "parse"    // command parsing
)

// Kind categorizes the error
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindExhausted       Kind = "exhausted"
	KindNullHandle      Kind = "null_handle"
	KindDuplicate       Kind = "duplicate"
	KindInvalidInput    Kind = "invalid_input"
	KindUnknownCategory Kind = "unknown_category"
	KindRegistration    Kind = "registration"
	KindCanceled        Kind = "canceled"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Category string
	Detail   string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Category != "" {
		b.WriteString(" in ")
		b.WriteString(e.Category)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Category sets the resource category name
func (b *Builder) Category(name string) *Builder {
	b.err.Category = name
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

// UnknownVirtual reports a virtual id with no mapping entry
func UnknownVirtual(phase Phase, category string, virt uint64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNotFound,
		Category: category,
		Detail:   fmt.Sprintf("virtual id %#x not found", virt),
		Value:    virt,
	}
}

// UnknownReal reports a real id with no mapping entry
func UnknownReal(phase Phase, category string, real uint64) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNotFound,
		Category: category,
		Detail:   fmt.Sprintf("real id %#x not found", real),
		Value:    real,
	}
}

// Exhausted reports that a category's virtual id space has run out
func Exhausted(category string, limit uint64) *Error {
	return &Error{
		Phase:    PhaseAllocate,
		Kind:     KindExhausted,
		Category: category,
		Detail:   fmt.Sprintf("virtual id space exhausted (max %#x)", limit),
		Value:    limit,
	}
}

// Duplicate reports a real id registered while already bound to a virtual id
func Duplicate(category string, real, virt uint64) *Error {
	return &Error{
		Phase:    PhaseCreate,
		Kind:     KindDuplicate,
		Category: category,
		Detail:   fmt.Sprintf("real id %#x already bound to virtual id %#x", real, virt),
		Value:    real,
	}
}

// NullHandle reports a null sentinel where a live handle was required
func NullHandle(phase Phase, category string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNullHandle,
		Category: category,
		Detail:   "null handle",
	}
}

// UnknownCategory reports a category name that does not exist
func UnknownCategory(phase Phase, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownCategory,
		Detail: fmt.Sprintf("unknown category %q", name),
		Value:  name,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a host registration error
func Registration(module, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s#%s", module, name),
		Cause:  cause,
	}
}

// Canceled wraps a context error seen while restoring a category
func Canceled(category string, cause error) *Error {
	return &Error{
		Phase:    PhaseRestore,
		Kind:     KindCanceled,
		Category: category,
		Detail:   "restore interrupted",
		Cause:    cause,
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
