package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable error class surfaced to callers.
// Handlers and tests branch on kinds, never on message text.
type Kind string

const (
	KindAuthorization Kind = "AUTHORIZATION"
	KindScope         Kind = "SCOPE_VIOLATION"
	KindDomain        Kind = "DOMAIN"
	KindLifecycle     Kind = "LIFECYCLE_VIOLATION"
	KindInvariant     Kind = "INVARIANT_VIOLATION"
	KindRateLimit     Kind = "RATE_LIMIT_EXCEEDED"
)

// Error carries the taxonomy kind plus optional structured metadata so
// failure logs and assertions never need to parse free-form text.
type Error struct {
	Kind    Kind
	Message string
	Meta    map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// WithMeta attaches a structured field and returns the same error for chaining.
func (e *Error) WithMeta(key string, value interface{}) *Error {
	if e.Meta == nil {
		e.Meta = map[string]interface{}{}
	}
	e.Meta[key] = value
	return e
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Authorization reports a missing/unknown identity or a role that may not act.
func Authorization(format string, args ...interface{}) *Error {
	return newf(KindAuthorization, format, args...)
}

// Scope reports a location/department the actor's scope does not cover.
func Scope(format string, args ...interface{}) *Error {
	return newf(KindScope, format, args...)
}

// Domain reports invalid business input (wrong amount, missing reference, ...).
func Domain(format string, args ...interface{}) *Error {
	return newf(KindDomain, format, args...)
}

// Lifecycle reports a status transition not present in the entity's table.
func Lifecycle(format string, args ...interface{}) *Error {
	return newf(KindLifecycle, format, args...)
}

// Invariant reports a broken engine guarantee. These indicate a bug and are
// surfaced, never swallowed.
func Invariant(format string, args ...interface{}) *Error {
	return newf(KindInvariant, format, args...)
}

// RateLimited reports an exhausted mutation-class window for an actor.
func RateLimited(format string, args ...interface{}) *Error {
	return newf(KindRateLimit, format, args...)
}

// Code extracts the taxonomy kind from err, unwrapping as needed.
// Returns "INTERNAL" for errors outside the taxonomy.
func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return string(ae.Kind)
	}
	return "INTERNAL"
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// HTTPStatus maps a taxonomy kind to the status the HTTP surface returns.
func HTTPStatus(err error) int {
	var ae *Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Kind {
	case KindAuthorization, KindScope:
		return http.StatusForbidden
	case KindDomain, KindLifecycle:
		return http.StatusUnprocessableEntity
	case KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
