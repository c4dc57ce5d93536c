package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/domain"
)

// TaskFilter narrows a task list query. Nil fields are not filtered on; the
// implementation picks the narrowest matching query shape.
type TaskFilter struct {
	DharmaID *uuid.UUID
	Status   *domain.TaskStatus
}

// Page holds offset/limit pagination parameters.
type Page struct {
	Offset int
	Limit  int
}

// TaskStore defines the interface for task data persistence.
//
// All single-task lookups and writes are scoped by the owning user, so a task
// belonging to another user behaves exactly like a nonexistent one
// (ErrTaskNotFound in both cases).
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors if the task data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByIDAndUser retrieves a task by its ID, scoped to the owning user.
	// Returns ErrTaskNotFound if the task does not exist or is owned by
	// another user.
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// Update persists changes to an existing task, scoped to the owning user.
	// Returns ErrTaskNotFound if no matching row exists.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task from the store, scoped to the owning user.
	// Returns ErrTaskNotFound if no matching row exists.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// CountByUserAndStatus counts the user's tasks holding the given status.
	// The capacity gate is this query with domain.StatusNow.
	CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.TaskStatus) (int, error)

	// List returns a page of the user's tasks matching the filter, newest
	// first by creation time.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter, page Page) ([]*domain.Task, error)

	// ListUserIDsWithStatus returns the distinct users owning at least one
	// task with the given status. Used by the reconciliation sweep.
	ListUserIDsWithStatus(ctx context.Context, status domain.TaskStatus) ([]uuid.UUID, error)

	// GetNewestByUserAndStatus returns the user's most recently created task
	// with the given status. Returns ErrTaskNotFound if there is none.
	GetNewestByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.TaskStatus) (*domain.Task, error)

	// CountActiveByDharma counts a dharma's tasks that have not reached the
	// terminal state. Used to block dharma deletion while work remains.
	CountActiveByDharma(ctx context.Context, dharmaID uuid.UUID) (int, error)

	// SetHiddenByDharma overwrites the hidden flag on every task of the given
	// dharma. This is the cascade write behind the dharma hidden toggle and
	// should run inside the same transaction as the dharma update.
	SetHiddenByDharma(ctx context.Context, dharmaID uuid.UUID, hidden bool) error

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// This allows multiple operations to be executed within a single transaction.
	// The transaction is created and managed by the caller (typically a service
	// via store.RunInTransaction).
	WithTx(tx *sql.Tx) TaskStore
}
