package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned when a status string does not map to a known
// task status.
var ErrInvalidStatus = errors.New("invalid task status")

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Task lifecycle states.
const (
	// StatusNow marks a task as actively worked on. A user may hold at most
	// a configured number of now-tasks simultaneously.
	StatusNow TaskStatus = "now"

	// StatusWaiting marks a task as queued behind the user's active slots.
	StatusWaiting TaskStatus = "waiting"

	// StatusSnoozed marks a task as put aside until its wake time.
	StatusSnoozed TaskStatus = "snoozed"

	// StatusDone is terminal. No transition leaves it.
	StatusDone TaskStatus = "done"

	// statusLegacyNext is a deprecated alias for StatusWaiting carried by old
	// clients and rows. It is normalized at ingress and never stored.
	statusLegacyNext TaskStatus = "next"
)

// ParseTaskStatus converts a status string into a canonical TaskStatus.
// The deprecated "next" value is normalized to StatusWaiting so the legacy
// tag never reaches internal state. Matching is case-insensitive.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToLower(s)) {
	case StatusNow:
		return StatusNow, nil
	case StatusWaiting, statusLegacyNext:
		return StatusWaiting, nil
	case StatusSnoozed:
		return StatusSnoozed, nil
	case StatusDone:
		return StatusDone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsValid reports whether the status is one of the canonical lifecycle states.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusNow, StatusWaiting, StatusSnoozed, StatusDone:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s TaskStatus) String() string {
	return string(s)
}

// KarmaType classifies the motivational polarity of a task.
type KarmaType string

// Karma classifications.
const (
	KarmaPositive KarmaType = "positive"
	KarmaNegative KarmaType = "negative"
	KarmaNeutral  KarmaType = "neutral"
)

// IsValid reports whether the karma type is known. The empty value is allowed
// because the field is optional on creation.
func (k KarmaType) IsValid() bool {
	switch k {
	case "", KarmaPositive, KarmaNegative, KarmaNeutral:
		return true
	}
	return false
}

// EffortLevel estimates how much work a task requires.
type EffortLevel string

// Effort estimates.
const (
	EffortLow    EffortLevel = "low"
	EffortMedium EffortLevel = "medium"
	EffortHigh   EffortLevel = "high"
)

// IsValid reports whether the effort level is known. The empty value is
// allowed because the field is optional on creation.
func (e EffortLevel) IsValid() bool {
	switch e {
	case "", EffortLow, EffortMedium, EffortHigh:
		return true
	}
	return false
}
