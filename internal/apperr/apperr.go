// Package apperr defines the error taxonomy shared by services and
// handlers.  Services raise an *Error with an explicit Kind at the point a
// rule is violated; handlers translate the Kind into an HTTP status.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindInvalidState     Kind = "invalid_state"
	KindCapacityExceeded Kind = "capacity_exceeded"
	KindAlreadyExists    Kind = "already_exists"
	KindForbidden        Kind = "forbidden"
	KindUnauthenticated  Kind = "unauthenticated"
	KindValidation       Kind = "validation"
	KindUpstream         Kind = "upstream"
)

// Error is a domain error carrying its kind and a caller-safe message.
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

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, apperr.NotFound(""))
// works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newErr(k Kind, msg string) *Error { return &Error{Kind: k, Message: msg} }

func NotFound(msg string) *Error         { return newErr(KindNotFound, msg) }
func InvalidState(msg string) *Error     { return newErr(KindInvalidState, msg) }
func CapacityExceeded(msg string) *Error { return newErr(KindCapacityExceeded, msg) }
func AlreadyExists(msg string) *Error    { return newErr(KindAlreadyExists, msg) }
func Forbidden(msg string) *Error        { return newErr(KindForbidden, msg) }
func Unauthenticated(msg string) *Error  { return newErr(KindUnauthenticated, msg) }
func Validation(msg string) *Error       { return newErr(KindValidation, msg) }

// Upstream wraps a store or gateway failure.  The message is safe to show;
// the wrapped error is only logged.
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
