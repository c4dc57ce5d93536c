package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskUserIDEmpty is returned when a task's user ID is empty or nil.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskDharmaIDEmpty is returned when a task's dharma ID is empty or nil.
	ErrTaskDharmaIDEmpty = errors.New("task dharma ID cannot be empty")

	// ErrTaskTitleInvalid is returned when a task title is outside the
	// allowed length range.
	ErrTaskTitleInvalid = errors.New("task title must be between 5 and 60 characters")

	// ErrTaskDescriptionTooLong is returned when a description exceeds the limit.
	ErrTaskDescriptionTooLong = errors.New("task description must be at most 200 characters")

	// ErrTaskStatusInvalid is returned when a task carries an unknown status.
	ErrTaskStatusInvalid = errors.New("task status is not a valid lifecycle state")

	// ErrTaskSnoozeInconsistent is returned when the snooze timestamp and the
	// status disagree: SnoozedUntil must be set iff the status is snoozed.
	ErrTaskSnoozeInconsistent = errors.New("snoozed_until must be set exactly when status is snoozed")

	// ErrTaskCompletionInconsistent is returned when the completion timestamp
	// and the status disagree: CompletedAt must be set iff the status is done.
	ErrTaskCompletionInconsistent = errors.New("completed_at must be set exactly when status is done")
)

// Title and description length bounds, shared with request validation.
const (
	TaskTitleMinLen       = 5
	TaskTitleMaxLen       = 60
	TaskDescriptionMaxLen = 200
)

// Task is the unit being scheduled. A task belongs to exactly one user and
// one dharma, and moves through the lifecycle states via the transition
// policy only.
type Task struct {
	ID           uuid.UUID   `json:"id"`
	UserID       uuid.UUID   `json:"user_id"`
	DharmaID     uuid.UUID   `json:"dharma_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	KarmaType    KarmaType   `json:"karma_type,omitempty"`
	EffortLevel  EffortLevel `json:"effort_level,omitempty"`
	Status       TaskStatus  `json:"status"`
	Hidden       bool        `json:"hidden"`
	SnoozedUntil *time.Time  `json:"snoozed_until,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user under the given dharma.
// The initial status is decided by the caller (the orchestrator, based on
// current capacity). It generates a new UUID and stamps the timestamps.
// Returns an error if validation fails.
func NewTask(userID, dharmaID uuid.UUID, title, description string, status TaskStatus) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		DharmaID:    dharmaID,
		Title:       title,
		Description: description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if t.DharmaID == uuid.Nil {
		return ErrTaskDharmaIDEmpty
	}

	// Length bounds count runes, matching the request-layer validator.
	if n := utf8.RuneCountInString(t.Title); n < TaskTitleMinLen || n > TaskTitleMaxLen {
		return ErrTaskTitleInvalid
	}

	if utf8.RuneCountInString(t.Description) > TaskDescriptionMaxLen {
		return ErrTaskDescriptionTooLong
	}

	if !t.Status.IsValid() {
		return ErrTaskStatusInvalid
	}

	if !t.KarmaType.IsValid() {
		return NewValidationError("karma_type", "is not a known karma type", ErrValidation)
	}

	if !t.EffortLevel.IsValid() {
		return NewValidationError("effort_level", "is not a known effort level", ErrValidation)
	}

	// SnoozedUntil is non-nil iff the task is snoozed.
	if (t.SnoozedUntil != nil) != (t.Status == StatusSnoozed) {
		return ErrTaskSnoozeInconsistent
	}

	// CompletedAt is non-nil iff the task is done.
	if (t.CompletedAt != nil) != (t.Status == StatusDone) {
		return ErrTaskCompletionInconsistent
	}

	return nil
}

// IsDone reports whether the task has reached its terminal state.
func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}
