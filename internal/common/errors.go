// Package common defines shared constants and the error taxonomy used across
// vidtube server layers. Callers should use errors.Is to match kinds.
package common

import (
	"errors"
	"fmt"
)

var (
	// Caller supplied a missing or empty required field.
	ErrValidation = errors.New("validation error")
	// Uniqueness violation (username or email already taken).
	ErrConflict = errors.New("already exists")
	// No matching identity.
	ErrNotFound = errors.New("not found")
	// Bad credentials or an invalid, expired or mismatched token.
	ErrUnauthorized = errors.New("unauthorized")
	// Missing signing secret or otherwise unusable process configuration.
	ErrConfiguration = errors.New("configuration error")
	// Unexpected failure; details are logged, never returned to callers.
	ErrInternal = errors.New("internal error")

	// Token verification errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrStaleSession is returned by session stores when a compare-and-swap
	// on the stored refresh token loses (token rotated or cleared meanwhile).
	ErrStaleSession = errors.New("stale session")
)

// Error is the structured failure handed to the request layer. Message is
// safe to show to end users; Kind is one of the sentinel errors above.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NewError builds an *Error of the given kind with a formatted message.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches the low-level cause. The cause is never part of Error().
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// KindOf returns a stable, transport-independent name for err's kind.
func KindOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}
