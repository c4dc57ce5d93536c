package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/domain/policy"
	"github.com/oriontask/orion-api/internal/service"
	"github.com/oriontask/orion-api/internal/service/auth"
	"github.com/oriontask/orion-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"dharma not found", store.ErrDharmaNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"active limit", policy.ErrActiveLimitExceeded, http.StatusConflict},
		{"already completed", policy.ErrAlreadyCompleted, http.StatusConflict},
		{"task completed", policy.ErrTaskCompleted, http.StatusConflict},
		{"deletion not allowed", policy.ErrDeletionNotAllowed, http.StatusConflict},
		{"dharma limit", service.ErrDharmaLimitExceeded, http.StatusConflict},
		{"dharma has tasks", service.ErrDharmaHasTasks, http.StatusConflict},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"validation", domain.ErrValidation, http.StatusBadRequest},
		{"invalid status", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"title out of bounds", domain.ErrTaskTitleInvalid, http.StatusBadRequest},
		{"description too long", domain.ErrTaskDescriptionTooLong, http.StatusBadRequest},
		{"dharma color invalid", domain.ErrDharmaColorInvalid, http.StatusBadRequest},
		{"use snooze", policy.ErrUseSnooze, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped not found", store.NewStoreError("task", "get", "lookup failed", store.ErrTaskNotFound), http.StatusNotFound},
		{"bare category not found", fmt.Errorf("%w: task", store.ErrNotFound), http.StatusNotFound},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Task not found", GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t, "Dharma not found", GetSafeErrorMessage(store.ErrDharmaNotFound))
	assert.Equal(t, "Active task limit reached", GetSafeErrorMessage(policy.ErrActiveLimitExceeded))
	assert.Equal(t, "Completed tasks cannot be deleted", GetSafeErrorMessage(policy.ErrDeletionNotAllowed))
	assert.Equal(t, "Dharma limit reached", GetSafeErrorMessage(service.ErrDharmaLimitExceeded))
	assert.Equal(t, "Resource not found", GetSafeErrorMessage(fmt.Errorf("%w: task", store.ErrNotFound)))
	assert.Equal(t, "Title must be between 5 and 60 characters", GetSafeErrorMessage(domain.ErrTaskTitleInvalid))
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))

	// Internal details never leak through the default path.
	leaky := errors.New("pq: connection refused host=10.0.0.3")
	msg := GetSafeErrorMessage(leaky)
	assert.Equal(t, "An unexpected error occurred", msg)
	assert.NotContains(t, msg, "10.0.0.3")

	// Field-level validation messages are preserved.
	fieldErr := domain.NewValidationError("title", "is too short", domain.ErrValidation)
	assert.Equal(t, "Invalid title: is too short", GetSafeErrorMessage(fieldErr))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := errors.New(
		"Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag",
	)
	assert.Equal(t, "Invalid Email: required field", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}
