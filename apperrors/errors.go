// Package apperrors provides structured error handling with HTTP status code mapping.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeUnauthorized indicates a missing or invalid credential (HTTP 401)
	TypeUnauthorized ErrorType = "unauthorized"
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeConfiguration indicates a configuration loading failure (HTTP 500)
	TypeConfiguration ErrorType = "configuration"
	// TypeConnection indicates a database or remote connection failure (HTTP 503)
	TypeConnection ErrorType = "connection"
	// TypeReflection indicates a schema reflection failure (HTTP 500)
	TypeReflection ErrorType = "reflection"
	// TypeInternal indicates a server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeValidation:
		return http.StatusBadRequest
	case TypeConnection:
		return http.StatusServiceUnavailable
	case TypeConfiguration, TypeReflection, TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// UnauthorizedError creates a new unauthorized error (HTTP 401).
func UnauthorizedError(message string) *Error {
	return &Error{
		Type:    TypeUnauthorized,
		Message: message,
		Context: make(map[string]any),
	}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{
		Type:    TypeValidation,
		Message: message,
		Context: make(map[string]any),
	}
}

// ConfigurationError creates a new configuration-loading error.
func ConfigurationError(message string, cause error) *Error {
	return &Error{
		Type:    TypeConfiguration,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// ConnectionError creates a new connection error (HTTP 503).
func ConnectionError(message string, cause error) *Error {
	return &Error{
		Type:    TypeConnection,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// ReflectionError creates a new schema-reflection error.
func ReflectionError(message string, cause error) *Error {
	return &Error{
		Type:    TypeReflection,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeInternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error to a structured Error.
// Unknown errors become internal errors with the original as cause.
func AsStructuredError(err error) *Error {
	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}
	return InternalError("internal server error", err)
}
