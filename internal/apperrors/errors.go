package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so the HTTP layer can pick a status code.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindCast
	KindNotFound
	KindUnauthorized
	KindConflict
)

// String returns the name reported to clients in the "error" field.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindCast:
		return "CastError"
	case KindNotFound:
		return "NotFoundError"
	case KindUnauthorized:
		return "Unauthorized"
	case KindConflict:
		return "Conflict"
	default:
		return "InternalError"
	}
}

// Error is the error type shared by repositories, services and handlers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, apperrors.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is checks.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrCast         = &Error{Kind: KindCast}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrConflict     = &Error{Kind: KindConflict}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a violated field constraint.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// Cast reports a malformed identifier or reference.
func Cast(format string, args ...any) *Error {
	return newError(KindCast, format, args...)
}

// NotFound reports a missing entity.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// Unauthorized reports a missing or rejected identity.
func Unauthorized(format string, args ...any) *Error {
	return newError(KindUnauthorized, format, args...)
}

// Conflict reports a duplicate unique field.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	e := newError(kind, format, args...)
	e.Err = err
	return e
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err carries the NotFound kind.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
