package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on Code so clones and wraps compare equal to the sentinel they came from.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrNotAuthenticated is returned by credentialed backend calls answered with 401/403.
	ErrNotAuthenticated = New("NOT_AUTHENTICATED", http.StatusUnauthorized, "Not authenticated")
	// ErrUpstream covers non-success backend answers other than 401/403.
	ErrUpstream = New("UPSTREAM_ERROR", http.StatusBadGateway, "backend request failed")
	// ErrUpstreamUnavailable covers transport failures reaching the backend.
	ErrUpstreamUnavailable = New("UPSTREAM_UNAVAILABLE", http.StatusBadGateway, "backend unreachable")

	ErrOAuthProvider       = New("OAUTH_PROVIDER_ERROR", http.StatusUnauthorized, "Authentication failed")
	ErrOAuthMissingCode    = New("OAUTH_MISSING_CODE", http.StatusBadRequest, "No authorization code received. Please try again.")
	ErrOAuthSessionMissing = New("OAUTH_SESSION_MISSING", http.StatusUnauthorized, "Authentication failed: No user data received")

	ErrStorage = New("STORAGE_ERROR", http.StatusInternalServerError, "client storage unavailable")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
