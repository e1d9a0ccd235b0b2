// Package apierror provides the error taxonomy used across services and the
// standardized response envelope returned to clients. All errors surfaced to
// callers go through this package to ensure consistency and to prevent leaking
// internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP mapping and caller handling.
type Kind int

const (
	// NotFound — a referenced invoice/item/client/payment does not exist.
	NotFound Kind = iota
	// InvalidArgument — non-positive quantity/amount, payment exceeding balance.
	InvalidArgument
	// Conflict — editing lines on a paid-against invoice, paying a fully paid
	// invoice, deleting an entity with dependent rows.
	Conflict
	// Internal — persistence/transaction failure. Logged in full, surfaced
	// to the caller as an opaque message.
	Internal
)

// Error carries a kind and a human-readable reason. NotFound, InvalidArgument
// and Conflict reasons are safe to render to the user; Internal reasons are not.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to its response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case NotFound:
		return http.StatusNotFound
	case InvalidArgument:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: NotFound, Msg: fmt.Sprintf(format, args...)}
}

func InvalidArgumentf(format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: Conflict, Msg: fmt.Sprintf(format, args...)}
}

// Internalf wraps a low-level failure. The cause is kept for logging but the
// message returned to clients is replaced by a generic one in the handler layer.
func Internalf(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: Internal, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, defaulting to Internal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool { return KindOf(err) == k }
