// Package errkind defines the closed error taxonomy surfaced by
// command handlers, matching the sentinel-plus-wrap convention the
// teacher uses in its auth package.
package errkind

import (
	"errors"
	"fmt"
)

// Kind is one of the taxonomy's closed set of error categories.
type Kind string

const (
	NotFound           Kind = "not_found"
	Unauthenticated    Kind = "unauthenticated"
	Forbidden          Kind = "forbidden"
	InvalidState       Kind = "invalid_state"
	InvalidAmount      Kind = "invalid_amount"
	Conflict           Kind = "conflict"
	StorageUnavailable Kind = "storage_unavailable"
	Internal           Kind = "internal"
)

// Error is the error type returned by command handlers. It carries a
// Kind for programmatic dispatch and a short human-readable reason.
type Error struct {
	Kind   Kind
	Reason string
	cause  error
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given kind with a reason.
func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Newf builds an Error of the given kind with a formatted reason.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind that wraps cause.
func Wrap(kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, defaulting to Internal when err
// is not one of our typed errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
