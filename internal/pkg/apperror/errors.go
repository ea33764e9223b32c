package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the application error type surfaced to the HTTP boundary.
// Code identifies the failure kind; StatusCode is the HTTP mapping.
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Err        error  `json:"-"`
}

const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeInference       = "INFERENCE_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodePersistence     = "PERSISTENCE_ERROR"
)

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func New(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

func NewUnauthenticated(message string) *AppError {
	return New(http.StatusUnauthorized, CodeUnauthenticated, message)
}

func NewInvalidInput(message string) *AppError {
	return New(http.StatusBadRequest, CodeInvalidInput, message)
}

func NewNotFound(message string) *AppError {
	return New(http.StatusNotFound, CodeNotFound, message)
}

func NewForbidden(message string) *AppError {
	return New(http.StatusForbidden, CodeForbidden, message)
}

func NewConflict(message string) *AppError {
	return New(http.StatusConflict, CodeConflict, message)
}

// NewInference wraps a failure of the inference backend (unreachable or
// non-success status).
func NewInference(err error) *AppError {
	e := New(http.StatusBadGateway, CodeInference, "inference backend request failed")
	e.Err = err
	return e
}

// NewInvalidResponse wraps an inference backend response that could not be
// parsed or lacked the expected field.
func NewInvalidResponse(err error) *AppError {
	e := New(http.StatusBadGateway, CodeInvalidResponse, "inference backend returned an invalid response")
	e.Err = err
	return e
}

// NewPersistence wraps a failed store operation.
func NewPersistence(err error) *AppError {
	e := New(http.StatusInternalServerError, CodePersistence, "persistence operation failed")
	e.Err = err
	return e
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}
