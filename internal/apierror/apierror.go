// Package apierror defines the errors surfaced to API callers.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an API error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

var statusByKind = map[Kind]int{
	KindValidation:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindInternal:     http.StatusInternalServerError,
}

// APIError is an error that is safe to show to the caller.
type APIError struct {
	Kind    Kind
	Message string
	// Details carries per-field validation messages.
	Details []string
	cause   error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code for the error.
func (e *APIError) Status() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// New creates an APIError of the given kind.
func New(kind Kind, message string) *APIError {
	return &APIError{Kind: kind, Message: message}
}

// Wrap creates an APIError that keeps err as its cause for logging.
func Wrap(kind Kind, message string, err error) *APIError {
	return &APIError{Kind: kind, Message: message, cause: err}
}

// As extracts an APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal when err is not an APIError.
func KindOf(err error) Kind {
	if apiErr, ok := As(err); ok {
		return apiErr.Kind
	}
	return KindInternal
}

func NewErrValidation(details ...string) *APIError {
	return &APIError{Kind: KindValidation, Message: "validation failed", Details: details}
}

func NewErrInvalidCredentials() *APIError {
	return New(KindUnauthorized, "Invalid credentials")
}

func NewErrInactiveUser() *APIError {
	return New(KindUnauthorized, "User account is inactive")
}

func NewErrMissingAuthorizationToken() *APIError {
	return New(KindUnauthorized, "missing bearer token")
}

func NewErrInvalidAuthorizationToken() *APIError {
	return New(KindUnauthorized, "invalid or expired token")
}

func NewErrInvalidRefreshToken() *APIError {
	return New(KindUnauthorized, "Invalid refresh token")
}

func NewErrForbidden() *APIError {
	return New(KindForbidden, "insufficient role")
}

func NewErrUserNotFound(id string) *APIError {
	return New(KindNotFound, fmt.Sprintf("User with ID %s not found", id))
}

func NewErrEmailIsTaken(email string) *APIError {
	return New(KindConflict, fmt.Sprintf("Email %s already exists", email))
}

func NewErrRefreshConflict() *APIError {
	return New(KindConflict, "refresh token already rotated by a concurrent request")
}

func NewErrInternalServerError(err error) *APIError {
	return Wrap(KindInternal, "internal server error", err)
}
