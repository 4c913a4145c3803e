// internal/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so handlers can map it to a transport status
// without parsing message text.
type Kind int

const (
	KindUnknown Kind = iota
	// Unauthenticated: no resolvable identity for an operation requiring one.
	Unauthenticated
	// Unauthorized: identity resolved but lacks permission for the mutation.
	Unauthorized
	// InvalidInput: the request itself is bad (non-positive loan duration,
	// missing book/owner reference, self-borrow).
	InvalidInput
	// NotFound: a referenced row is absent.
	NotFound
	// UpstreamFailure: the persistence or identity collaborator failed.
	UpstreamFailure
	// InvariantViolation: an illegal state transition was attempted.
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	case UpstreamFailure:
		return "upstream_failure"
	case InvariantViolation:
		return "invariant_violation"
	}
	return "unknown"
}

// Error carries a kind, an optional operation name for upstream failures,
// and a human-readable message.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a plain classified error.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Ef builds a classified error with a formatted message.
func Ef(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates a collaborator failure with the operation that hit it.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: "operation failed", Err: err}
}

// Upstream is shorthand for wrapping a storage/identity collaborator error.
func Upstream(op string, err error) *Error {
	return Wrap(UpstreamFailure, op, err)
}

// KindOf extracts the kind from err, walking the wrap chain.
// Returns KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err (or anything it wraps) has the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
