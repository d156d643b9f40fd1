// Package apperr defines the application error taxonomy and its mapping
// onto HTTP status codes.
package apperr

import (
	"fmt"
	"net/http"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AppError carries everything the HTTP layer and the log pipeline need
// about a failure: a stable code, an internal message, the message shown
// to the caller, and the response status.
type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	HTTPStatus  int
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// NewValidation reports malformed or missing input. 400.
func NewValidation(msg string) *AppError {
	return &AppError{
		Code:        "E100",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		HTTPStatus:  http.StatusBadRequest,
	}
}

// NewAuthentication reports a missing or expired token. 401 forces the
// client to tear its session down.
func NewAuthentication(msg string) *AppError {
	return &AppError{
		Code:        "E101",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		HTTPStatus:  http.StatusUnauthorized,
	}
}

// NewMalformedToken reports a token that cannot be parsed at all. 422,
// which the client treats the same as 401.
func NewMalformedToken(msg string) *AppError {
	return &AppError{
		Code:        "E102",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		HTTPStatus:  http.StatusUnprocessableEntity,
	}
}

// NewAuthorization reports a role or ownership check failure. 403.
func NewAuthorization(msg string) *AppError {
	return &AppError{
		Code:        "E103",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityMedium,
		HTTPStatus:  http.StatusForbidden,
	}
}

// NewNotFound reports an unknown entity id. 404.
func NewNotFound(entity string) *AppError {
	return &AppError{
		Code:        "E104",
		Message:     fmt.Sprintf("%s not found", entity),
		UserMessage: fmt.Sprintf("%s not found", entity),
		Severity:    SeverityLow,
		HTTPStatus:  http.StatusNotFound,
	}
}

// NewConflict reports a duplicate action, e.g. a repeat apply. 409.
func NewConflict(msg string) *AppError {
	return &AppError{
		Code:        "E105",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityLow,
		HTTPStatus:  http.StatusConflict,
	}
}

// NewState reports an operation invalid for the entity's current
// moderation status. 409.
func NewState(msg string) *AppError {
	return &AppError{
		Code:        "E106",
		Message:     msg,
		UserMessage: msg,
		Severity:    SeverityMedium,
		HTTPStatus:  http.StatusConflict,
	}
}

// NewDatabase wraps a storage failure. 500, retryable.
func NewDatabase(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("database error: %s", underlyingMsg),
		UserMessage: "Temporary problem, please try again later",
		Severity:    SeverityHigh,
		HTTPStatus:  http.StatusInternalServerError,
		Retryable:   true,
		cause:       cause,
	}
}
