// Package policy implements the task status transition rules. The policy
// operates on one already-loaded task at a time and never touches the store;
// the service layer supplies fresh active counts and persists the result.
package policy

import (
	"errors"
	"time"

	"github.com/oriontask/orion-api/internal/domain"
)

// Transition rule violations. All of these are client-reportable business
// errors, recovered at the service boundary and never retried.
var (
	// ErrTaskCompleted is returned when any transition is attempted on a
	// task that already reached its terminal state.
	ErrTaskCompleted = errors.New("task is completed and cannot change status")

	// ErrDeletionNotAllowed is returned when a delete is attempted on a
	// completed task. Completed tasks are kept as history.
	ErrDeletionNotAllowed = errors.New("completed tasks cannot be deleted")

	// ErrAlreadyCompleted is returned when a completed task is marked done
	// or active a second time.
	ErrAlreadyCompleted = errors.New("task is already completed")

	// ErrActiveLimitExceeded is returned when a transition would push a
	// user's now-task count past the configured capacity.
	ErrActiveLimitExceeded = errors.New("active task limit reached")

	// ErrUseSnooze is returned when the generic transition path is asked to
	// snooze. Snoozing has its own entry point because it also computes the
	// wake time.
	ErrUseSnooze = errors.New("snoozing requires the snooze operation")
)

// Defaults applied when the corresponding Config field is zero.
const (
	DefaultMaxNowTasks    = 5
	DefaultSnoozeDuration = 2 * time.Hour
)

// Config carries the tunable policy constants.
type Config struct {
	// MaxNowTasks is the per-user cap on simultaneously active tasks.
	MaxNowTasks int

	// SnoozeDuration is how far into the future Snooze sets the wake time.
	SnoozeDuration time.Duration
}

// TransitionPolicy validates and applies task status transitions. The zero
// value is not usable; construct with New.
type TransitionPolicy struct {
	maxNowTasks    int
	snoozeDuration time.Duration
	now            func() time.Time
}

// New creates a TransitionPolicy from the given config, filling unset fields
// with the defaults. The clock is injectable for tests via WithClock.
func New(cfg Config) *TransitionPolicy {
	if cfg.MaxNowTasks <= 0 {
		cfg.MaxNowTasks = DefaultMaxNowTasks
	}
	if cfg.SnoozeDuration <= 0 {
		cfg.SnoozeDuration = DefaultSnoozeDuration
	}

	return &TransitionPolicy{
		maxNowTasks:    cfg.MaxNowTasks,
		snoozeDuration: cfg.SnoozeDuration,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the policy using the given clock. Used by tests
// to pin timestamps.
func (p *TransitionPolicy) WithClock(now func() time.Time) *TransitionPolicy {
	cp := *p
	cp.now = now
	return &cp
}

// MaxNowTasks returns the configured per-user active-slot capacity.
func (p *TransitionPolicy) MaxNowTasks() int {
	return p.maxNowTasks
}

// EnsureTransitionAllowed fails when the task is in its terminal state.
// Deletion attempts get a distinct error so callers can render a different
// message; the trigger condition is the same.
func (p *TransitionPolicy) EnsureTransitionAllowed(task *domain.Task, isDeletion bool) error {
	if task.IsDone() {
		if isDeletion {
			return ErrDeletionNotAllowed
		}
		return ErrTaskCompleted
	}
	return nil
}

// EnsureCapacity fails when the target status requires an active slot and the
// supplied count has already reached the cap. A nil target is treated as
// StatusNow (used by the move-to-now shortcut). This is a pure check: the
// caller supplies a freshly queried count.
func (p *TransitionPolicy) EnsureCapacity(activeCount int, target *domain.TaskStatus) error {
	status := domain.StatusNow
	if target != nil {
		status = *target
	}

	if status == domain.StatusNow && activeCount >= p.maxNowTasks {
		return ErrActiveLimitExceeded
	}
	return nil
}

// ApplyTransition sets the task's status and clears any snooze. Snoozing is
// rejected here on purpose: it needs a wake time, which only Snooze computes.
func (p *TransitionPolicy) ApplyTransition(task *domain.Task, newStatus domain.TaskStatus) error {
	if newStatus == domain.StatusSnoozed {
		return ErrUseSnooze
	}

	task.Status = newStatus
	task.SnoozedUntil = nil
	task.UpdatedAt = p.now()
	return nil
}

// Snooze puts the task aside until now + the configured snooze duration.
func (p *TransitionPolicy) Snooze(task *domain.Task) {
	now := p.now()
	wake := now.Add(p.snoozeDuration)
	task.Status = domain.StatusSnoozed
	task.SnoozedUntil = &wake
	task.UpdatedAt = now
}

// MarkDone moves the task to its terminal state and stamps the completion
// time exactly once. Calling it on a completed task fails.
func (p *TransitionPolicy) MarkDone(task *domain.Task) error {
	if task.IsDone() {
		return ErrAlreadyCompleted
	}

	now := p.now()
	task.Status = domain.StatusDone
	task.SnoozedUntil = nil
	task.CompletedAt = &now
	task.UpdatedAt = now
	return nil
}

// MarkActive moves the task into an active slot. The caller must have checked
// capacity first. CompletedAt is left untouched: completion is only ever
// stamped by MarkDone.
func (p *TransitionPolicy) MarkActive(task *domain.Task) error {
	if task.IsDone() {
		return ErrAlreadyCompleted
	}

	task.Status = domain.StatusNow
	task.SnoozedUntil = nil
	task.UpdatedAt = p.now()
	return nil
}
