// Package apierr is the error taxonomy of the JSON API.
//
// Stores return plain or sentinel errors; handlers translate them into an
// *Error at the boundary and hand it to Write, which picks the status code
// and renders {"success":false,"message":...}. Anything that is not an
// *Error is treated as a server error.
package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Kind classifies an API error.
type Kind int

const (
	KindServer Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// Error is an error that knows how it should be presented to a client.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string // offending request fields, validation only
	Err     error    // underlying cause, server errors only
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports a user-correctable request problem.
func Validation(msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Forbidden reports an authenticated principal without access.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NotFound reports a referenced account or record that does not exist.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict reports a unique constraint violation.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// TooManyRequests reports a rate-limited caller.
func TooManyRequests(msg string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: msg}
}

// Server wraps an unexpected failure.
func Server(msg string, err error) *Error {
	return &Error{Kind: KindServer, Message: msg, Err: err}
}

// From converts any error to an *Error, wrapping unknown errors as server
// errors with the given fallback message.
func From(err error, fallback string) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Server(fallback, err)
}

type body struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Write renders err as a JSON error response. Server errors are logged at
// error level; client errors are not logged.
func Write(w http.ResponseWriter, log *zap.Logger, err error) {
	ae := From(err, "Server error")
	b := body{Message: ae.Message, Fields: ae.Fields}
	if ae.Kind == KindServer {
		if ae.Err != nil {
			b.Error = ae.Err.Error()
		}
		if log != nil {
			log.Error(ae.Message, zap.Error(ae.Err))
		}
	}
	JSON(w, ae.Status(), b)
}

// JSON writes v as the response body with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
