// Package errs defines the error kinds that cross the connector's core
// boundary: Backend, Auth, NotFound, Misconfiguration, and Invariant.
// None of these are recovered internally; callers switch on Kind to
// decide whether a retry makes sense.
package errs

import (
	"fmt"
	"runtime"
	"strings"
)

// Kind classifies an error by its nature and who should react to it.
type Kind int

const (
	// Backend is any storage fault: timeout, transport error, corrupt
	// page. The core never recovers from it internally.
	Backend Kind = iota
	// Auth is a credential or permission failure talking to the
	// backend. Treated as a Backend error by callers that don't care
	// about the distinction.
	Auth
	// NotFound means a table, tablet, or key the caller expected is
	// absent.
	NotFound
	// Misconfiguration is a precondition violation: a constraint
	// referring to an unindexed column, an unknown serializer, a
	// missing schema property. Not an error path — callers should
	// treat it as a programming/config bug, not a thing to retry.
	Misconfiguration
	// Invariant means the stored state contradicts what the core
	// guarantees, e.g. more than one sentinel metrics row observed.
	// Fatal; indicates external corruption of the index or metrics
	// table.
	Invariant
)

func (k Kind) String() string {
	switch k {
	case Backend:
		return "backend"
	case Auth:
		return "auth"
	case NotFound:
		return "not_found"
	case Misconfiguration:
		return "misconfiguration"
	case Invariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Error is a structured error carrying a Kind, the operation and
// component that raised it, and an optional wrapped cause.
type Error struct {
	Kind      Kind
	Message   string
	Op        string // e.g. "Indexer.Flush", "Planner.GetTabletSplits"
	Component string // e.g. "kvstore", "index", "planner"
	Cause     error
	Stack     []uintptr
}

// New creates an Error with a captured stack trace.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Stack: captureStack()}
}

// Wrap attaches op/component context to err. If err is already an *Error
// missing that context, it is filled in in place; otherwise a new Backend
// error wrapping err is returned.
func Wrap(err error, op, component string) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		if e.Op == "" {
			e.Op = op
		}
		if e.Component == "" {
			e.Component = component
		}
		return e
	}
	return &Error{
		Kind:      Backend,
		Message:   err.Error(),
		Op:        op,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", e.Kind, e.Message))
	if e.Op != "" {
		b.WriteString(fmt.Sprintf(" (op: %s", e.Op))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}
	return b.String()
}

// Unwrap enables errors.Is / errors.As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
