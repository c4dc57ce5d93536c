package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/domain"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both registration and login.
type AuthResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Token  string    `json:"token"`
}

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	DharmaID    uuid.UUID `json:"dharma_id"    validate:"required"`
	Title       string    `json:"title"        validate:"required,min=5,max=60"`
	Description string    `json:"description"  validate:"max=200"`
	KarmaType   string    `json:"karma_type"   validate:"omitempty,oneof=positive negative neutral"`
	EffortLevel string    `json:"effort_level" validate:"omitempty,oneof=low medium high"`
}

// UpdateTaskRequest carries partial edits for a task. Absent fields keep
// their stored values.
type UpdateTaskRequest struct {
	Title       *string `json:"title"        validate:"omitempty,min=5,max=60"`
	Description *string `json:"description"  validate:"omitempty,max=200"`
	KarmaType   *string `json:"karma_type"   validate:"omitempty,oneof=positive negative neutral"`
	EffortLevel *string `json:"effort_level" validate:"omitempty,oneof=low medium high"`
	Hidden      *bool   `json:"hidden"`
}

// ChangeStatusRequest is the payload for a generic status transition.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TaskResponse is the API representation of a task.
type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	DharmaID     uuid.UUID  `json:"dharma_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	KarmaType    string     `json:"karma_type,omitempty"`
	EffortLevel  string     `json:"effort_level,omitempty"`
	Status       string     `json:"status"`
	Hidden       bool       `json:"hidden"`
	SnoozedUntil *time.Time `json:"snoozed_until,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewTaskResponse converts a domain task to its API representation.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:           task.ID,
		DharmaID:     task.DharmaID,
		Title:        task.Title,
		Description:  task.Description,
		KarmaType:    string(task.KarmaType),
		EffortLevel:  string(task.EffortLevel),
		Status:       task.Status.String(),
		Hidden:       task.Hidden,
		SnoozedUntil: task.SnoozedUntil,
		CompletedAt:  task.CompletedAt,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}

// NewTaskListResponse converts a slice of domain tasks.
func NewTaskListResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewTaskResponse(task))
	}
	return out
}

// CreateDharmaRequest is the payload for creating a dharma. An omitted color
// is assigned randomly.
type CreateDharmaRequest struct {
	Name  string `json:"name"  validate:"required,min=1,max=60"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// UpdateDharmaRequest carries partial edits for a dharma.
type UpdateDharmaRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=60"`
	Color *string `json:"color" validate:"omitempty,hexcolor"`
}

// DharmaResponse is the API representation of a dharma.
type DharmaResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDharmaResponse converts a domain dharma to its API representation.
func NewDharmaResponse(dharma *domain.Dharma) DharmaResponse {
	return DharmaResponse{
		ID:        dharma.ID,
		Name:      dharma.Name,
		Color:     dharma.Color,
		Hidden:    dharma.Hidden,
		CreatedAt: dharma.CreatedAt,
		UpdatedAt: dharma.UpdatedAt,
	}
}

// NewDharmaListResponse converts a slice of domain dharmas.
func NewDharmaListResponse(dharmas []*domain.Dharma) []DharmaResponse {
	out := make([]DharmaResponse, 0, len(dharmas))
	for _, dharma := range dharmas {
		out = append(out, NewDharmaResponse(dharma))
	}
	return out
}
