// Package errs implements the cross-cutting error taxonomy shared by every
// component: a fixed set of kinds, carried alongside an operation name,
// optional path/identifier context, and a wrapped cause.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to branch on it (the CLI
// exit-code mapping, the Tool Registry's protocol error envelope).
type Kind string

const (
	Configuration    Kind = "Configuration"
	NotFound         Kind = "NotFound"
	Validation       Kind = "Validation"
	Parse            Kind = "Parse"
	IO               Kind = "IO"
	Timeout          Kind = "Timeout"
	Cycle            Kind = "Cycle"
	Untrusted        Kind = "Untrusted"
	ModelUnavailable Kind = "ModelUnavailable"
	Abort            Kind = "Abort"
	Internal         Kind = "Internal"
)

// Error is the single error type used across components. Operation, Path,
// and ID are optional context added as an error threads up through a call
// chain; Cause is the wrapped underlying error, if any.
type Error struct {
	Kind  Kind
	Op    string
	Path  string
	ID    string
	Hint  string
	Cause error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.ID != "" {
		msg += fmt.Sprintf(" (id=%s)", e.ID)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is(err, errs.New(SomeKind, "")) style kind checks, and
// also matches on the embedded Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs a bare *Error of the given kind.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Wrap constructs a *Error of the given kind wrapping cause.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Cause: cause}
}

// WithPath returns a copy of e with Path set.
func (e *Error) WithPath(path string) *Error {
	c := *e
	c.Path = path
	return &c
}

// WithID returns a copy of e with ID set.
func (e *Error) WithID(id string) *Error {
	c := *e
	c.ID = id
	return &c
}

// WithHint returns a copy of e with a human-facing remediation hint set.
func (e *Error) WithHint(hint string) *Error {
	c := *e
	c.Hint = hint
	return &c
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error, and
// Internal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// ExitCode maps an error to a CLI exit code: 0 for nil, 2 for any error
// of any Kind (Abort included). It never returns 1; there is no separate
// completed-with-warnings result.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if KindOf(err) == Abort {
		return 2
	}
	return 2
}
