package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	// ErrorTypePersistence covers key-value store and database failures. These
	// are recovered locally with defaults and never block record CRUD.
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeNotification marks notification delivery being unavailable.
	// This is an expected condition, logged at warning level at most.
	ErrorTypeNotification ErrorType = "notification"
	// ErrorTypeMalformedData marks a stored blob that failed to parse; the
	// blob is discarded and state reinitialized to defaults.
	ErrorTypeMalformedData ErrorType = "malformed_data"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeNotFound      ErrorType = "not_found"
	ErrorTypeInternal      ErrorType = "internal"
)

// AppError represents an application error with additional context
type AppError struct {
	Type     ErrorType
	Message  string
	Code     string
	Internal error
	Context  map[string]interface{}
	Source   string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the internal error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogFields returns structured logging fields
func (e *AppError) LogFields() []interface{} {
	fields := []interface{}{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}

	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}

	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// New creates a new AppError
func New(errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Source:  source,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error into AppError
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	_, file, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", file, line)

	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: err,
		Source:   source,
		Context:  make(map[string]interface{}),
	}
}

// Handler provides error handling strategies
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a new error handler
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle processes an error according to its type
func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		h.handleAppError(ctx, appErr)
	} else {
		h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
	}
}

// handleAppError logs an AppError at the severity its type calls for. Nothing
// in the notification subsystem is fatal to the host application.
func (h *Handler) handleAppError(ctx context.Context, err *AppError) {
	switch err.Type {
	case ErrorTypeValidation, ErrorTypeNotFound:
		h.logger.WarnContext(ctx, "Validation error", err.LogFields()...)
	case ErrorTypeNotification, ErrorTypeMalformedData:
		h.logger.WarnContext(ctx, "Recovered with fallback", err.LogFields()...)
	case ErrorTypePersistence, ErrorTypeInternal:
		h.logger.ErrorContext(ctx, "Critical error", err.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Unknown error type", err.LogFields()...)
	}
}

// LogAndReturn logs an error and returns it
func (h *Handler) LogAndReturn(ctx context.Context, err error) error {
	h.Handle(ctx, err)
	return err
}

// Predefined errors
var (
	ErrSupplyNotFound      = New(ErrorTypeNotFound, "SUPPLY_NOT_FOUND", "Supply not found")
	ErrItemNotFound        = New(ErrorTypeNotFound, "ITEM_NOT_FOUND", "In-use item not found")
	ErrTimerNotFound       = New(ErrorTypeNotFound, "TIMER_NOT_FOUND", "Timer not found")
	ErrOutOfStock          = New(ErrorTypeValidation, "OUT_OF_STOCK", "Supply has no remaining quantity")
	ErrInvalidInput        = New(ErrorTypeValidation, "INVALID_INPUT", "Invalid input provided")
	ErrPersistenceFailure  = New(ErrorTypePersistence, "PERSISTENCE", "Persistence operation failed")
	ErrMalformedStoredData = New(ErrorTypeMalformedData, "MALFORMED_DATA", "Stored blob failed to parse")
)

// Convenience functions for common errors
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, "VALIDATION", message)
}

func NewPersistenceError(err error) *AppError {
	return Wrap(err, ErrorTypePersistence, "PERSISTENCE", "Persistence operation failed")
}

func NewNotificationError(err error) *AppError {
	return Wrap(err, ErrorTypeNotification, "DELIVERY", "Notification delivery unavailable")
}

func NewMalformedDataError(err error, key string) *AppError {
	return Wrap(err, ErrorTypeMalformedData, "MALFORMED_DATA", "Stored blob failed to parse").
		WithContext("key", key)
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrorTypeInternal, "INTERNAL", "Internal error")
}
