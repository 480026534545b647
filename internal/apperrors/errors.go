// Package apperrors carries the application error taxonomy: typed errors that
// unwrap cleanly and log as structured fields.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrorType classifies an error for handling and logging.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeCatalog    ErrorType = "catalog"
	ErrorTypeReport     ErrorType = "report"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError is an application error with a stable code and optional wrapped
// cause.
type AppError struct {
	Type     ErrorType
	Code     string
	Message  string
	Internal error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches on type and code so predefined sentinels compare with errors.Is.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// LogFields returns structured logging fields for the error.
func (e *AppError) LogFields() []any {
	fields := []any{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
	}
	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}
	return fields
}

// New creates a new AppError.
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{Type: errorType, Code: code, Message: message}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{Type: errorType, Code: code, Message: message, Internal: err}
}

// Predefined errors.
var (
	ErrInvalidInput       = New(ErrorTypeValidation, "INVALID_INPUT", "Invalid input provided")
	ErrProfileNotFound    = New(ErrorTypeNotFound, "PROFILE_NOT_FOUND", "Patient profile not found")
	ErrCatalogUnavailable = New(ErrorTypeCatalog, "CATALOG_UNAVAILABLE", "Drug catalog unavailable")
	ErrStorage            = New(ErrorTypeStorage, "STORAGE", "Profile store operation failed")
	ErrInternal           = New(ErrorTypeInternal, "INTERNAL", "Internal error")
)

// NewValidationError builds a validation error with a specific message.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

// NewStorageError wraps a storage failure.
func NewStorageError(err error) *AppError {
	return Wrap(err, ErrorTypeStorage, "STORAGE", "Profile store operation failed")
}

// Handler routes errors to the right log level.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle logs an error according to its type. Validation problems are
// warnings; everything else is an error.
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
		return
	}
	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeNotFound:
		h.logger.WarnContext(ctx, "Request rejected", appErr.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Operation failed", appErr.LogFields()...)
	}
}
