// Package common defines the error kinds shared by the service layers and the
// HTTP boundary. Callers match kinds with errors.Is.
package common

import (
	"errors"
	"net/http"
)

var (
	// Client-correctable failures. Surfaced as 400 with the error's message.
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Access failures.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Store unavailable, pool exhausted, connection dropped. Retryable.
	ErrUnavailable = errors.New("service unavailable")
)

// Error pairs a kind with the message shown to clients and the underlying
// cause, which is only logged.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func Validation(message string) error { return newError(ErrValidation, message, nil) }

func NotFound(message string) error { return newError(ErrNotFound, message, nil) }

func Conflict(message string, cause error) error { return newError(ErrConflict, message, cause) }

func Unavailable(cause error) error {
	return newError(ErrUnavailable, "Service temporarily unavailable", cause)
}

// HTTPStatus maps an error to the status code written by the handlers.
// Not-found and conflict stay 400 for compatibility with existing clients.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the text that is safe to put in a response body.
func ClientMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		var e *Error
		if errors.As(err, &e) && e.Message != "" {
			return e.Message
		}
		return err.Error()
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusServiceUnavailable:
		return "Service temporarily unavailable"
	default:
		return "Internal server error"
	}
}
