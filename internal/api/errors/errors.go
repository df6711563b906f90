// Package errors defines the API error taxonomy returned to callers.
package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// Code identifies the kind of an APIError.
type Code string

const (
	CodeBadRequest            Code = "BAD_REQUEST"
	CodeMissingRequiredParams Code = "MISSING_REQUIRED_PARAMS"
	CodeInvalidEnum           Code = "INVALID_ENUM"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeNotFound              Code = "NOT_FOUND"
	CodeTooManyRequests       Code = "TOO_MANY_REQUESTS"
	CodeInternal              Code = "INTERNAL"
)

// APIError is an error that carries the HTTP status it is reported with.
type APIError struct {
	HTTPCode int
	Code     Code
	Message  string
	// Fields lists the offending parameter names, when relevant.
	Fields []string
	cause  error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// As returns the APIError in err's chain, if any.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stdErrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// HasCode reports whether err is an APIError with the given code.
func HasCode(err error, code Code) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Code == code
}

func NewErrBadRequest(message string) *APIError {
	if message == "" {
		message = "bad request"
	}
	return &APIError{HTTPCode: http.StatusBadRequest, Code: CodeBadRequest, Message: message}
}

// NewErrMissingRequiredParams reports required credential fields absent for backend.
func NewErrMissingRequiredParams(backend string, fields []string) *APIError {
	return &APIError{
		HTTPCode: http.StatusBadRequest,
		Code:     CodeMissingRequiredParams,
		Message:  fmt.Sprintf("Missing required params when setting up %s config: %s", backend, strings.Join(fields, ",")),
		Fields:   fields,
	}
}

// NewErrInvalidEnum reports a parameter whose value is outside its allowed set.
func NewErrInvalidEnum(field, value string, allowed []string) *APIError {
	return &APIError{
		HTTPCode: http.StatusBadRequest,
		Code:     CodeInvalidEnum,
		Message:  fmt.Sprintf("'%s' param must be one of %s, got %q", field, strings.Join(allowed, " | "), value),
		Fields:   []string{field},
	}
}

func NewErrUnauthorized(message string) *APIError {
	if message == "" {
		message = "unauthorized"
	}
	return &APIError{HTTPCode: http.StatusUnauthorized, Code: CodeUnauthorized, Message: message}
}

func NewErrMissingAuthorizationToken() *APIError {
	return NewErrUnauthorized("Unable to get authorization from header")
}

func NewErrForbidden() *APIError {
	return &APIError{HTTPCode: http.StatusForbidden, Code: CodeForbidden, Message: "forbidden"}
}

func NewErrSessionNotFound(id string) *APIError {
	return &APIError{HTTPCode: http.StatusNotFound, Code: CodeNotFound, Message: fmt.Sprintf("session %s not found", id)}
}

func NewErrServiceNotFound(name string) *APIError {
	return &APIError{HTTPCode: http.StatusNotFound, Code: CodeNotFound, Message: fmt.Sprintf("service %s is not configured", name)}
}

func NewErrTooManyRequests() *APIError {
	return &APIError{HTTPCode: http.StatusTooManyRequests, Code: CodeTooManyRequests, Message: "too many requests"}
}

// NewErrInternalServerError hides err from the caller but keeps it in the chain.
func NewErrInternalServerError(err error) *APIError {
	return &APIError{HTTPCode: http.StatusInternalServerError, Code: CodeInternal, Message: "internal server error", cause: err}
}
