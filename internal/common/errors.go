package common

import (
	"errors"
	"net/http"
)

// Error codes shared by the sales and catalog packages.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeSchema     = "SCHEMA_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeInternal   = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithStatus returns a copy of the error rendered with a different HTTP status.
func (e *AppError) WithStatus(status int) *AppError {
	if e == nil {
		return nil
	}
	cp := *e
	cp.HTTPStatus = status
	return &cp
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// Validation reports a missing, empty or out-of-range field.
func Validation(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Schema reports a field carrying the wrong type.
func Schema(message string) *AppError {
	return &AppError{Code: CodeSchema, Message: message, HTTPStatus: http.StatusBadRequest}
}

// NotFound reports a referenced record that does not exist.
func NotFound(message string, err error) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound, Err: err}
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var target *AppError
	if !errors.As(err, &target) {
		return false
	}
	return target.Code == code
}
