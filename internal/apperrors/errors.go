// Package apperrors defines the failure kinds shared by every domain.
// Services return either a bare kind or an *Error wrapping one; callers
// classify with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotConnected       = errors.New("storage not connected")
	ErrInternal           = errors.New("internal error")
)

// Error pairs a kind with a caller-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidationFailed, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string) error {
	return &Error{Kind: ErrNotFound, Message: resource + " not found"}
}

func Conflict(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// Internal wraps a provider failure. The cause stays reachable through
// errors.Is/As but is never part of the public message.
func Internal(op string, cause error) error {
	return &internalError{op: op, cause: cause}
}

type internalError struct {
	op    string
	cause error
}

func (e *internalError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.cause)
}

func (e *internalError) Is(target error) bool {
	return target == ErrInternal
}

func (e *internalError) Unwrap() error {
	return e.cause
}

// Message returns the caller-facing message for err: the explicit message
// of an *Error, the kind text for a bare kind, and a generic text otherwise.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	for _, kind := range []error{
		ErrNotFound, ErrConflict, ErrInvalidCredentials, ErrInvalidToken,
		ErrUnauthorized, ErrForbidden, ErrValidationFailed, ErrNotConnected,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal server error"
}
