package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	dharmaID := uuid.New()

	task, err := NewTask(userID, dharmaID, "Water the garden", "back beds first", StatusNow)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}
	if task.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, task.UserID)
	}
	if task.DharmaID != dharmaID {
		t.Errorf("Expected dharma ID %s, got %s", dharmaID, task.DharmaID)
	}
	if task.Status != StatusNow {
		t.Errorf("Expected status %q, got %q", StatusNow, task.Status)
	}
	if task.CompletedAt != nil {
		t.Error("Expected nil CompletedAt on a new task")
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Invalid userID
	_, err = NewTask(uuid.Nil, dharmaID, "Water the garden", "", StatusNow)
	if !errors.Is(err, ErrTaskUserIDEmpty) {
		t.Errorf("Expected ErrTaskUserIDEmpty, got %v", err)
	}

	// Invalid dharmaID
	_, err = NewTask(userID, uuid.Nil, "Water the garden", "", StatusNow)
	if !errors.Is(err, ErrTaskDharmaIDEmpty) {
		t.Errorf("Expected ErrTaskDharmaIDEmpty, got %v", err)
	}

	// Title too short
	_, err = NewTask(userID, dharmaID, "Hi", "", StatusNow)
	if !errors.Is(err, ErrTaskTitleInvalid) {
		t.Errorf("Expected ErrTaskTitleInvalid, got %v", err)
	}

	// Title too long
	_, err = NewTask(userID, dharmaID, strings.Repeat("x", TaskTitleMaxLen+1), "", StatusNow)
	if !errors.Is(err, ErrTaskTitleInvalid) {
		t.Errorf("Expected ErrTaskTitleInvalid, got %v", err)
	}

	// Description too long
	_, err = NewTask(userID, dharmaID, "Water the garden", strings.Repeat("x", TaskDescriptionMaxLen+1), StatusNow)
	if !errors.Is(err, ErrTaskDescriptionTooLong) {
		t.Errorf("Expected ErrTaskDescriptionTooLong, got %v", err)
	}

	// Invalid status
	_, err = NewTask(userID, dharmaID, "Water the garden", "", TaskStatus("paused"))
	if !errors.Is(err, ErrTaskStatusInvalid) {
		t.Errorf("Expected ErrTaskStatusInvalid, got %v", err)
	}
}

func TestTaskValidateCountsRunes(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	dharmaID := uuid.New()

	// 60 multibyte runes is within bounds even though it is 180 bytes.
	title := strings.Repeat("日", TaskTitleMaxLen)
	if _, err := NewTask(userID, dharmaID, title, "", StatusWaiting); err != nil {
		t.Errorf("Expected no error for a %d-rune title, got %v", TaskTitleMaxLen, err)
	}

	// One rune over the limit still fails.
	_, err := NewTask(userID, dharmaID, title+"日", "", StatusWaiting)
	if !errors.Is(err, ErrTaskTitleInvalid) {
		t.Errorf("Expected ErrTaskTitleInvalid, got %v", err)
	}

	desc := strings.Repeat("é", TaskDescriptionMaxLen)
	if _, err := NewTask(userID, dharmaID, "Water the garden", desc, StatusWaiting); err != nil {
		t.Errorf("Expected no error for a %d-rune description, got %v", TaskDescriptionMaxLen, err)
	}
	_, err = NewTask(userID, dharmaID, "Water the garden", desc+"é", StatusWaiting)
	if !errors.Is(err, ErrTaskDescriptionTooLong) {
		t.Errorf("Expected ErrTaskDescriptionTooLong, got %v", err)
	}
}

func TestTaskValidateSnoozeConsistency(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), uuid.New(), "Water the garden", "", StatusWaiting)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Snoozed without a wake time is inconsistent.
	task.Status = StatusSnoozed
	task.SnoozedUntil = nil
	if err := task.Validate(); !errors.Is(err, ErrTaskSnoozeInconsistent) {
		t.Errorf("Expected ErrTaskSnoozeInconsistent, got %v", err)
	}

	// Wake time without snoozed status is inconsistent too.
	wake := time.Now().UTC().Add(2 * time.Hour)
	task.Status = StatusWaiting
	task.SnoozedUntil = &wake
	if err := task.Validate(); !errors.Is(err, ErrTaskSnoozeInconsistent) {
		t.Errorf("Expected ErrTaskSnoozeInconsistent, got %v", err)
	}

	// Both set together is fine.
	task.Status = StatusSnoozed
	if err := task.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestTaskValidateCompletionConsistency(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), uuid.New(), "Water the garden", "", StatusWaiting)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Done without a completion time is inconsistent.
	task.Status = StatusDone
	if err := task.Validate(); !errors.Is(err, ErrTaskCompletionInconsistent) {
		t.Errorf("Expected ErrTaskCompletionInconsistent, got %v", err)
	}

	// A completion time on a non-done task is inconsistent too.
	completed := time.Now().UTC()
	task.Status = StatusWaiting
	task.CompletedAt = &completed
	if err := task.Validate(); !errors.Is(err, ErrTaskCompletionInconsistent) {
		t.Errorf("Expected ErrTaskCompletionInconsistent, got %v", err)
	}

	// Both set together is fine.
	task.Status = StatusDone
	if err := task.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestTaskValidateOptionalEnums(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), uuid.New(), "Water the garden", "", StatusWaiting)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	task.KarmaType = KarmaPositive
	task.EffortLevel = EffortHigh
	if err := task.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	task.KarmaType = KarmaType("good")
	if err := task.Validate(); err == nil {
		t.Error("Expected error for unknown karma type")
	}

	task.KarmaType = ""
	task.EffortLevel = EffortLevel("huge")
	if err := task.Validate(); err == nil {
		t.Error("Expected error for unknown effort level")
	}
}

func TestTaskIsDone(t *testing.T) {
	t.Parallel()

	task := Task{Status: StatusNow}
	if task.IsDone() {
		t.Error("Expected active task not to be done")
	}

	task.Status = StatusDone
	if !task.IsDone() {
		t.Error("Expected done task to be done")
	}
}
