// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes surfaced in API responses.
const (
	CodeInternal = "INTERNAL_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	CodeValidation = "VALIDATION_ERROR"

	CodeAlreadyProcessed       = "REQUEST_ALREADY_PROCESSED"
	CodeRequestRejected        = "REQUEST_REJECTED"
	CodeNoStockRecord          = "NO_STOCK_RECORD"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	CodeNotFound = "NOT_FOUND"

	CodeConflict  = "CONFLICT"
	CodeDuplicate = "DUPLICATE_ENTRY"
)

// AppError is the error type the whole service speaks. The error middleware
// renders Code, Message and Details; Err stays server-side.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the response status the middleware uses
	HTTPStatus int `json:"-"`

	// Err is the wrapped cause, logged but never serialized
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds one key-value pair to the details map.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause attaches the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// NewValidation reports invalid input (400).
func NewValidation(message string) *AppError {
	return newError(CodeValidation, http.StatusBadRequest, message)
}

// NewNotFound reports a missing entity (404).
func NewNotFound(entity string, id any) *AppError {
	return newError(CodeNotFound, http.StatusNotFound, fmt.Sprintf("%s not found", entity)).
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewBusinessRule reports a domain rule violation (422) under a caller-chosen code.
func NewBusinessRule(code, message string) *AppError {
	return newError(code, http.StatusUnprocessableEntity, message)
}

// NewAlreadyProcessed is returned when a terminal operation is attempted on an
// inward request whose ledger fan-out has already been applied.
func NewAlreadyProcessed(requestID any) *AppError {
	return newError(CodeAlreadyProcessed, http.StatusUnprocessableEntity,
		"Stock inward request has already been processed").
		WithDetail("request_id", requestID)
}

// NewNoStockRecord is returned when consumption references a material that has
// no stock aggregate and the service is configured to fail rather than skip.
func NewNoStockRecord(materialID any) *AppError {
	return newError(CodeNoStockRecord, http.StatusUnprocessableEntity,
		"No stock record exists for material").
		WithDetail("material_id", materialID)
}

// NewConcurrentModification reports a lost optimistic lock (409).
func NewConcurrentModification(entity string, id any) *AppError {
	return newError(CodeConcurrentModification, http.StatusConflict,
		"Record was modified by another user. Please refresh and try again.").
		WithDetail("entity", entity).
		WithDetail("id", id)
}

// NewTimeout reports a retryable statement timeout (504).
func NewTimeout(operation string) *AppError {
	return newError(CodeTimeout, http.StatusGatewayTimeout,
		"Operation timed out, please retry").
		WithDetail("operation", operation)
}

// NewInternal wraps an unexpected error; the client sees a generic message.
func NewInternal(err error) *AppError {
	e := newError(CodeInternal, http.StatusInternalServerError, "Internal server error")
	e.Err = err
	return e
}

// NewUnauthorized reports a failed authentication (401).
func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, http.StatusUnauthorized, message)
}

// NewForbidden reports a missing role (403).
func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, http.StatusForbidden, message)
}

// NewConflict reports a state conflict such as a foreign key still in use (409).
func NewConflict(message string) *AppError {
	return newError(CodeConflict, http.StatusConflict, message)
}

// NewDuplicate reports a unique constraint violation (409).
func NewDuplicate(entity, field, value string) *AppError {
	return newError(CodeDuplicate, http.StatusConflict,
		fmt.Sprintf("%s with this %s already exists", entity, field)).
		WithDetail("entity", entity).
		WithDetail("field", field).
		WithDetail("value", value)
}

// IsAppError reports whether err has an AppError in its chain.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts the AppError from the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func hasCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsAlreadyProcessed reports whether err is an already-processed error.
func IsAlreadyProcessed(err error) bool {
	return hasCode(err, CodeAlreadyProcessed)
}
