package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/domain"
)

// DharmaStore defines the interface for dharma data persistence.
// Lookups are scoped by the owning user; a dharma owned by another user is
// indistinguishable from a nonexistent one.
type DharmaStore interface {
	// Create saves a new dharma to the store.
	Create(ctx context.Context, dharma *domain.Dharma) error

	// GetByIDAndUser retrieves a dharma by its ID, scoped to the owning user.
	// Returns ErrDharmaNotFound if the dharma does not exist or is owned by
	// another user.
	GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Dharma, error)

	// Update persists changes to an existing dharma, scoped to the owning user.
	// Returns ErrDharmaNotFound if no matching row exists.
	Update(ctx context.Context, dharma *domain.Dharma) error

	// Delete removes a dharma from the store, scoped to the owning user.
	// Returns ErrDharmaNotFound if no matching row exists.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// ListByUser returns the user's dharmas, oldest first. Hidden dharmas are
	// excluded unless includeHidden is set.
	ListByUser(ctx context.Context, userID uuid.UUID, includeHidden bool) ([]*domain.Dharma, error)

	// CountByUser counts the user's dharmas, hidden included. Consumed by the
	// per-user dharma cap.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// WithTx returns a new DharmaStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) DharmaStore
}
