package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/oriontask/orion-api/internal/api/shared"
	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/domain/policy"
	"github.com/oriontask/orion-api/internal/service"
	"github.com/oriontask/orion-api/internal/service/auth"
	"github.com/oriontask/orion-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so handlers
// never leak internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors. Tasks and dharmas belonging to another user surface
	// as not found, not forbidden, so ids cannot be probed. The bare category
	// sentinel also lands here: rows-affected checks wrap it directly.
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, policy.ErrActiveLimitExceeded),
		errors.Is(err, policy.ErrAlreadyCompleted),
		errors.Is(err, policy.ErrTaskCompleted),
		errors.Is(err, policy.ErrDeletionNotAllowed),
		errors.Is(err, service.ErrDharmaLimitExceeded),
		errors.Is(err, service.ErrDharmaHasTasks):
		return http.StatusConflict

	// Bad request errors. The field-length sentinels are user input failures,
	// not internal faults, so they map to 400 even when a handler surfaces
	// them directly from the domain layer.
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrTaskTitleInvalid),
		errors.Is(err, domain.ErrTaskDescriptionTooLong),
		errors.Is(err, domain.ErrDharmaNameEmpty),
		errors.Is(err, domain.ErrDharmaColorInvalid),
		errors.Is(err, policy.ErrUseSnooze):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrDharmaNotFound):
		return "Dharma not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, policy.ErrActiveLimitExceeded):
		return "Active task limit reached"

	case errors.Is(err, policy.ErrAlreadyCompleted),
		errors.Is(err, policy.ErrTaskCompleted):
		return "Task is already completed"

	case errors.Is(err, policy.ErrDeletionNotAllowed):
		return "Completed tasks cannot be deleted"

	case errors.Is(err, policy.ErrUseSnooze):
		return "Use the snooze endpoint to snooze a task"

	case errors.Is(err, service.ErrDharmaLimitExceeded):
		return "Dharma limit reached"

	case errors.Is(err, service.ErrDharmaHasTasks):
		return "Dharma still has open tasks"

	case errors.Is(err, domain.ErrInvalidStatus):
		return "Invalid task status"

	case errors.Is(err, domain.ErrTaskTitleInvalid):
		return "Title must be between 5 and 60 characters"

	case errors.Is(err, domain.ErrTaskDescriptionTooLong):
		return "Description must be at most 200 characters"

	case errors.Is(err, domain.ErrDharmaNameEmpty):
		return "Dharma name cannot be empty"

	case errors.Is(err, domain.ErrDharmaColorInvalid):
		return "Color must be a #RRGGBB hex value"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return sanitizeDomainError(err)

	default:
		return "An unexpected error occurred"
	}
}

// sanitizeDomainError keeps field-level validation messages, which are safe
// to show, and falls back to a generic message for anything else.
func sanitizeDomainError(err error) string {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	}
	return "Invalid request data"
}

// HandleAPIError maps an error to a status code and safe message and writes
// the response. A non-empty defaultMsg overrides the mapped message for
// errors that map to 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError converts validator struct errors into a short,
// user-friendly message without echoing internal type names.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "hexcolor":
		return "invalid color"
	default:
		return "validation failed"
	}
}
