package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeInvalidFileType    ErrorType = "invalid_file_type"
	ErrorTypeValidationRejected ErrorType = "validation_rejected"
	ErrorTypeNetwork            ErrorType = "network"
	ErrorTypeUnauthorized       ErrorType = "unauthorized"
	ErrorTypeSubmissionFailed   ErrorType = "submission_failed"
	ErrorTypeCancelled          ErrorType = "cancelled"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeInternal           ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewInvalidFileTypeError is returned for selections that are not Excel workbooks.
// It is raised before any network call.
func NewInvalidFileTypeError(message string, details ...string) *AppError {
	return &AppError{
		Type:       ErrorTypeInvalidFileType,
		Message:    message,
		Details:    firstOrEmpty(details),
		StatusCode: http.StatusUnsupportedMediaType,
	}
}

// NewValidationRejectedError carries the server-declared message verbatim
func NewValidationRejectedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidationRejected,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewSubmissionFailedError reports that both the proposal request and the
// fallback upload failed.
func NewSubmissionFailedError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeSubmissionFailed,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewCancelledError creates a new cancellation error
func NewCancelledError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeCancelled,
		Message:    message,
		StatusCode: 499,
		Cause:      cause,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// TypeOf returns the error type, or internal for foreign errors
func TypeOf(err error) ErrorType {
	if appErr, ok := As(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// GetStatusCode returns the HTTP status code for an error
func GetStatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func firstOrEmpty(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
