// Package apperr carries the error kinds services return to handlers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCode
	KindNotFound
	KindUnauthorized
	KindExpired
	KindForbidden
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCode:
		return "invalid_code"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindExpired:
		return "expired"
	case KindForbidden:
		return "forbidden"
	case KindDelivery:
		return "delivery"
	default:
		return "internal"
	}
}

// Status maps a kind onto the HTTP status handlers answer with.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInvalidCode:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized, KindExpired:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error { return &Error{Kind: kind, Message: msg} }

func Validation(msg string) error   { return New(KindValidation, msg) }
func InvalidCode(msg string) error  { return New(KindInvalidCode, msg) }
func NotFound(msg string) error     { return New(KindNotFound, msg) }
func Unauthorized(msg string) error { return New(KindUnauthorized, msg) }
func Expired(msg string) error      { return New(KindExpired, msg) }
func Forbidden(msg string) error    { return New(KindForbidden, msg) }

func Delivery(msg string, err error) error {
	return &Error{Kind: KindDelivery, Message: msg, Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func StatusOf(err error) int { return KindOf(err).Status() }

// MessageOf returns the client-safe message. Wrapped causes never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal error"
}
