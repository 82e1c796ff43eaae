package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseMemory Phase = "memory" // linear memory access and growth
	PhaseStore  Phase = "store"  // context / arena / handle operations
	PhaseExtern Phase = "extern" // extern construction and conversion
	PhaseLink   Phase = "link"   // import resolution
	PhaseHost   Phase = "host"   // host function registration and calls
	PhaseEngine Phase = "engine" // external engine adapter
)

// Kind categorizes the error
type Kind string

const (
	KindOverflow        Kind = "overflow"           // address/length not representable
	KindHeapOutOfBounds Kind = "heap_out_of_bounds" // range exceeds committed size
	KindNonUTF8String   Kind = "non_utf8_string"    // bytes are not valid UTF-8
	KindCouldNotGrow    Kind = "could_not_grow"     // growth exceeds maximum or allocator limits
	KindCrossContextUse Kind = "cross_context_use"  // handle or value used against a foreign context
	KindTypeMismatch    Kind = "type_mismatch"      // extern kind disagrees with required type
	KindUnknownImport   Kind = "unknown_import"     // module import has no resolver entry
	KindInvalidHandle   Kind = "invalid_handle"     // arena indexing failure, programmer error
	KindGeneric         Kind = "generic"            // anything else
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause     error
	Phase     Phase
	Kind      Kind
	Namespace string
	Name      string
	Found     string
	Expected  string
	Detail    string

	// CurrentPages and DeltaPages carry growth diagnostics for
	// KindCouldNotGrow; zero otherwise.
	CurrentPages uint32
	DeltaPages   uint32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Namespace != "" || e.Name != "" {
		b.WriteString(" at ")
		b.WriteString(e.Namespace)
		if e.Name != "" {
			b.WriteByte('.')
			b.WriteString(e.Name)
		}
	}

	if e.Found != "" || e.Expected != "" {
		b.WriteString(": ")
		if e.Found != "" && e.Expected != "" {
			b.WriteString("found ")
			b.WriteString(e.Found)
			b.WriteString(", expected ")
			b.WriteString(e.Expected)
		} else if e.Found != "" {
			b.WriteString("found ")
			b.WriteString(e.Found)
		} else {
			b.WriteString("expected ")
			b.WriteString(e.Expected)
		}
	}

	if e.Kind == KindCouldNotGrow {
		fmt.Fprintf(&b, ": current size %d pages, requested increase %d pages",
			e.CurrentPages, e.DeltaPages)
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

// IsKind reports whether err is an *Error of the given kind, in any phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
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

// Import sets the namespace and name of the import the error refers to
func (b *Builder) Import(namespace, name string) *Builder {
	b.err.Namespace = namespace
	b.err.Name = name
	return b
}

// Found sets the runtime kind or type that was actually present
func (b *Builder) Found(t string) *Builder {
	b.err.Found = t
	return b
}

// Expected sets the kind or type that was required
func (b *Builder) Expected(t string) *Builder {
	b.err.Expected = t
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

// Overflow creates an address-computation overflow error
func Overflow(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: "address computation overflows the memory's native width",
	}
}

// HeapOutOfBounds creates an out-of-bounds access error
func HeapOutOfBounds(phase Phase, end, size uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHeapOutOfBounds,
		Detail: fmt.Sprintf("access ends at byte %d, committed size is %d", end, size),
	}
}

// NonUTF8String creates an invalid UTF-8 error
func NonUTF8String(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNonUTF8String,
		Detail: "bytes read from memory are not valid UTF-8",
	}
}

// CouldNotGrow creates a growth failure error carrying the size before the
// failed call and the delta that was requested.
func CouldNotGrow(current, delta uint32) *Error {
	return &Error{
		Phase:        PhaseMemory,
		Kind:         KindCouldNotGrow,
		CurrentPages: current,
		DeltaPages:   delta,
	}
}

// CrossContextUse creates a context identity violation error
func CrossContextUse(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCrossContextUse,
		Detail: fmt.Sprintf("%s was created by a different context", what),
	}
}

// TypeMismatch creates an extern kind mismatch error
func TypeMismatch(phase Phase, found, expected string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Found:    found,
		Expected: expected,
	}
}

// UnknownImport creates a link failure error for a missing import entry
func UnknownImport(namespace, name, expected string) *Error {
	return &Error{
		Phase:     PhaseLink,
		Kind:      KindUnknownImport,
		Namespace: namespace,
		Name:      name,
		Expected:  expected,
	}
}

// InvalidHandle creates an arena indexing error. This is a programmer-error
// condition, never retried.
func InvalidHandle(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhaseStore,
		Kind:   KindInvalidHandle,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Generic creates an uncategorized error
func Generic(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindGeneric,
		Detail: fmt.Sprintf(detail, args...),
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
