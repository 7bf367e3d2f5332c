package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is the user-facing fallback for internal failures.
	SystemErrorMessage = "internal server error"
	// DatabaseUnavailableMessage is returned when no store is configured.
	DatabaseUnavailableMessage = "Database not configured"
	// EmptyOrderMessage rejects orders without line items.
	EmptyOrderMessage = "Order must contain at least one item"
	// ValidationFailedMessage heads an itemized validation error response.
	ValidationFailedMessage = "Request validation failed"
)

// AppError wraps an underlying error with an HTTP status and a safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError.
func New(err error, status int, message string) *AppError {
	return &AppError{Err: err, Status: status, Message: message}
}

// BadRequest is a 400 with the given message.
func BadRequest(message string) *AppError {
	return New(nil, http.StatusBadRequest, message)
}

// Unavailable reports a missing store. Clients see a 500.
func Unavailable(err error) *AppError {
	return New(err, http.StatusInternalServerError, DatabaseUnavailableMessage)
}

// Internal hides err behind SystemErrorMessage.
func Internal(err error) *AppError {
	return New(err, http.StatusInternalServerError, SystemErrorMessage)
}

// From converts any error into an AppError, defaulting to Internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
