package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestTask(t *testing.T, status domain.TaskStatus) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(uuid.New(), uuid.New(), "Water the garden", "", status)
	if err != nil {
		t.Fatalf("failed to build test task: %v", err)
	}
	return task
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	p := New(Config{})
	if p.MaxNowTasks() != DefaultMaxNowTasks {
		t.Errorf("Expected default cap %d, got %d", DefaultMaxNowTasks, p.MaxNowTasks())
	}

	p = New(Config{MaxNowTasks: 3, SnoozeDuration: time.Hour})
	if p.MaxNowTasks() != 3 {
		t.Errorf("Expected cap 3, got %d", p.MaxNowTasks())
	}
}

func TestEnsureTransitionAllowed(t *testing.T) {
	t.Parallel()

	p := New(Config{})

	open := newTestTask(t, domain.StatusNow)
	if err := p.EnsureTransitionAllowed(open, false); err != nil {
		t.Errorf("Expected open task to allow transitions, got %v", err)
	}
	if err := p.EnsureTransitionAllowed(open, true); err != nil {
		t.Errorf("Expected open task to allow deletion, got %v", err)
	}

	done := newTestTask(t, domain.StatusNow)
	if err := p.MarkDone(done); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	if err := p.EnsureTransitionAllowed(done, false); !errors.Is(err, ErrTaskCompleted) {
		t.Errorf("Expected ErrTaskCompleted, got %v", err)
	}
	if err := p.EnsureTransitionAllowed(done, true); !errors.Is(err, ErrDeletionNotAllowed) {
		t.Errorf("Expected ErrDeletionNotAllowed, got %v", err)
	}
}

func TestEnsureCapacity(t *testing.T) {
	t.Parallel()

	p := New(Config{MaxNowTasks: 2})

	// Under the cap.
	if err := p.EnsureCapacity(1, nil); err != nil {
		t.Errorf("Expected capacity available, got %v", err)
	}

	// At the cap.
	if err := p.EnsureCapacity(2, nil); !errors.Is(err, ErrActiveLimitExceeded) {
		t.Errorf("Expected ErrActiveLimitExceeded, got %v", err)
	}

	// Non-active targets never consume a slot.
	waiting := domain.StatusWaiting
	if err := p.EnsureCapacity(99, &waiting); err != nil {
		t.Errorf("Expected waiting target to bypass the cap, got %v", err)
	}
	doneStatus := domain.StatusDone
	if err := p.EnsureCapacity(99, &doneStatus); err != nil {
		t.Errorf("Expected done target to bypass the cap, got %v", err)
	}

	// Explicit now target behaves like the nil shortcut.
	now := domain.StatusNow
	if err := p.EnsureCapacity(2, &now); !errors.Is(err, ErrActiveLimitExceeded) {
		t.Errorf("Expected ErrActiveLimitExceeded, got %v", err)
	}
}

func TestApplyTransition(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := New(Config{}).WithClock(fixedClock(base))

	task := newTestTask(t, domain.StatusNow)
	if err := p.ApplyTransition(task, domain.StatusWaiting); err != nil {
		t.Fatalf("ApplyTransition failed: %v", err)
	}
	if task.Status != domain.StatusWaiting {
		t.Errorf("Expected status waiting, got %q", task.Status)
	}
	if !task.UpdatedAt.Equal(base) {
		t.Errorf("Expected UpdatedAt %v, got %v", base, task.UpdatedAt)
	}

	// Snooze must go through the dedicated entry point.
	if err := p.ApplyTransition(task, domain.StatusSnoozed); !errors.Is(err, ErrUseSnooze) {
		t.Errorf("Expected ErrUseSnooze, got %v", err)
	}

	// Leaving the snoozed state clears the wake time.
	snoozed := newTestTask(t, domain.StatusWaiting)
	p.Snooze(snoozed)
	if err := p.ApplyTransition(snoozed, domain.StatusWaiting); err != nil {
		t.Fatalf("ApplyTransition failed: %v", err)
	}
	if snoozed.SnoozedUntil != nil {
		t.Error("Expected SnoozedUntil to be cleared")
	}
}

func TestSnooze(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := New(Config{SnoozeDuration: 2 * time.Hour}).WithClock(fixedClock(base))

	task := newTestTask(t, domain.StatusNow)
	p.Snooze(task)

	if task.Status != domain.StatusSnoozed {
		t.Errorf("Expected status snoozed, got %q", task.Status)
	}
	if task.SnoozedUntil == nil {
		t.Fatal("Expected SnoozedUntil to be set")
	}
	want := base.Add(2 * time.Hour)
	if !task.SnoozedUntil.Equal(want) {
		t.Errorf("Expected wake time %v, got %v", want, task.SnoozedUntil)
	}
	if err := task.Validate(); err != nil {
		t.Errorf("Expected snoozed task to remain valid, got %v", err)
	}
}

func TestMarkDone(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := New(Config{}).WithClock(fixedClock(base))

	task := newTestTask(t, domain.StatusWaiting)
	p.Snooze(task)

	if err := p.MarkDone(task); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if task.Status != domain.StatusDone {
		t.Errorf("Expected status done, got %q", task.Status)
	}
	if task.SnoozedUntil != nil {
		t.Error("Expected SnoozedUntil to be cleared on completion")
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(base) {
		t.Errorf("Expected CompletedAt %v, got %v", base, task.CompletedAt)
	}

	// A second completion fails and the original stamp survives.
	later := p.WithClock(fixedClock(base.Add(time.Hour)))
	if err := later.MarkDone(task); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("Expected ErrAlreadyCompleted, got %v", err)
	}
	if !task.CompletedAt.Equal(base) {
		t.Errorf("Expected original CompletedAt to survive, got %v", task.CompletedAt)
	}
}

func TestMarkActive(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := New(Config{}).WithClock(fixedClock(base))

	task := newTestTask(t, domain.StatusWaiting)
	p.Snooze(task)

	if err := p.MarkActive(task); err != nil {
		t.Fatalf("MarkActive failed: %v", err)
	}
	if task.Status != domain.StatusNow {
		t.Errorf("Expected status now, got %q", task.Status)
	}
	if task.SnoozedUntil != nil {
		t.Error("Expected SnoozedUntil to be cleared on activation")
	}
	// Activation never writes a completion stamp.
	if task.CompletedAt != nil {
		t.Errorf("Expected CompletedAt to stay nil, got %v", task.CompletedAt)
	}

	if err := p.MarkDone(task); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if err := p.MarkActive(task); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("Expected ErrAlreadyCompleted, got %v", err)
	}
}
