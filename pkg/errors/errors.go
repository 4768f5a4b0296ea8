// Package errors holds the typed failures shared by the translator, the
// lifecycle and the HTTP surfaces. Every type implements AppError so a
// handler can map it to a status and a stable code without a type switch.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the base interface for all application errors
type AppError interface {
	error
	HTTPStatus() int
	Code() string
}

// Fallbacks for errors that do not implement AppError
const (
	UnknownCode   = "UNKNOWN_ERROR"
	UnknownStatus = http.StatusInternalServerError
)

// NotFoundError is an entity, table or route the current build does not know
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Name == "" {
		return e.Kind + " not found"
	}
	return fmt.Sprintf("%s %q is not part of the current schema", e.Kind, e.Name)
}

func (e *NotFoundError) HTTPStatus() int { return http.StatusNotFound }
func (e *NotFoundError) Code() string    { return "NOT_FOUND" }

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name}
}

// ValidationError is a malformed argument, body or variable
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) HTTPStatus() int { return http.StatusBadRequest }
func (e *ValidationError) Code() string    { return "VALIDATION_ERROR" }

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UnauthorizedError is a failed admin password or system endpoint check.
// Graph and custom REST access failures use AccessDeniedError instead.
type UnauthorizedError struct {
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Reason == "" {
		return "unauthorized"
	}
	return "unauthorized: " + e.Reason
}

func (e *UnauthorizedError) HTTPStatus() int { return http.StatusUnauthorized }
func (e *UnauthorizedError) Code() string    { return "UNAUTHORIZED" }

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

// ConflictError is a route or endpoint path claimed twice in one build
type ConflictError struct {
	Resource string
	Owner    string
	Path     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is already claimed by %s", e.Resource, e.Path, e.Owner)
}

func (e *ConflictError) HTTPStatus() int { return http.StatusConflict }
func (e *ConflictError) Code() string    { return "CONFLICT" }

// NewConflictError creates a new ConflictError
func NewConflictError(resource, owner, path string) *ConflictError {
	return &ConflictError{Resource: resource, Owner: owner, Path: path}
}

// InternalError wraps an unexpected failure with what was being attempted
type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *InternalError) HTTPStatus() int { return http.StatusInternalServerError }
func (e *InternalError) Code() string    { return "INTERNAL_ERROR" }
func (e *InternalError) Unwrap() error   { return e.Cause }

// NewInternalError creates a new InternalError
func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{Message: message, Cause: cause}
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsUnauthorized checks if an error is an UnauthorizedError
func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// GetHTTPStatus returns the status of the first AppError in the chain
func GetHTTPStatus(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return UnknownStatus
}

// GetErrorCode returns the code of the first AppError in the chain
func GetErrorCode(err error) string {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return UnknownCode
}

// ErrorResponse is the JSON body of every failed REST call
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Data    any    `json:"data"`
}

// ToResponse converts err into its response body and status
func ToResponse(err error) (int, ErrorResponse) {
	status := GetHTTPStatus(err)
	return status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    GetErrorCode(err),
	}
}
