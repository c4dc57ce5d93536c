package service

import (
	"errors"
	"fmt"
)

// Dharma business-rule violations surfaced by the DharmaService.
var (
	// ErrDharmaLimitExceeded is returned when creating a dharma would push a
	// user past the per-user dharma cap.
	ErrDharmaLimitExceeded = errors.New("maximum number of dharmas reached for this user")

	// ErrDharmaHasTasks is returned when a dharma cannot be deleted because
	// tasks that have not reached the terminal state still reference it.
	ErrDharmaHasTasks = errors.New("dharma still has incomplete tasks")
)

// ServiceError wraps errors from the service layer with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "move_to_now")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
