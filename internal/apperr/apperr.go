// Package apperr defines the error kinds surfaced by the catalog services.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to branch on failure type.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindInvalidArgument Kind = "invalid_argument"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

// Sentinels for errors.Is comparisons. Only the Kind is compared.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrInternal        = &Error{Kind: KindInternal}
)

// Error is a kind-tagged error with an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind. An invalid argument is also a validation failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind == t.Kind {
		return true
	}
	return e.Kind == KindInvalidArgument && t.Kind == KindValidation
}

// NotFound reports a missing entity.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation reports input that violates a domain rule.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgument reports an unsupported option such as an unknown sort key.
func InvalidArgument(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a consistency or infrastructure failure.
func Internal(err error, format string, args ...any) error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// Wrap attaches a kind to an existing error.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
