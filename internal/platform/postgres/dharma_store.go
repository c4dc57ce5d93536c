package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/store"
)

// PostgresDharmaStore implements the store.DharmaStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDharmaStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDharmaStore creates a new PostgreSQL implementation of the DharmaStore interface.
func NewPostgresDharmaStore(db store.DBTX, logger *slog.Logger) *PostgresDharmaStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDharmaStore{
		db:     db,
		logger: logger.With(slog.String("component", "dharma_store")),
	}
}

// Ensure PostgresDharmaStore implements store.DharmaStore interface
var _ store.DharmaStore = (*PostgresDharmaStore)(nil)

const dharmaColumns = `id, user_id, name, color, hidden, created_at, updated_at`

// Create implements store.DharmaStore.Create
func (s *PostgresDharmaStore) Create(ctx context.Context, dharma *domain.Dharma) error {
	if err := dharma.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO dharmas (id, user_id, name, color, hidden, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		dharma.ID,
		dharma.UserID,
		dharma.Name,
		dharma.Color,
		dharma.Hidden,
		dharma.CreatedAt,
		dharma.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create dharma",
			slog.String("dharma_id", dharma.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByIDAndUser implements store.DharmaStore.GetByIDAndUser
func (s *PostgresDharmaStore) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Dharma, error) {
	query := fmt.Sprintf(`SELECT %s FROM dharmas WHERE id = $1 AND user_id = $2`, dharmaColumns)

	var dharma domain.Dharma
	err := s.db.QueryRowContext(ctx, query, id, userID).Scan(
		&dharma.ID,
		&dharma.UserID,
		&dharma.Name,
		&dharma.Color,
		&dharma.Hidden,
		&dharma.CreatedAt,
		&dharma.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDharmaNotFound
		}
		return nil, MapError(err)
	}

	return &dharma, nil
}

// Update implements store.DharmaStore.Update
func (s *PostgresDharmaStore) Update(ctx context.Context, dharma *domain.Dharma) error {
	if err := dharma.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE dharmas
		SET name = $1, color = $2, hidden = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		dharma.Name,
		dharma.Color,
		dharma.Hidden,
		dharma.UpdatedAt,
		dharma.ID,
		dharma.UserID,
	)
	if err != nil {
		s.logger.Error("failed to update dharma",
			slog.String("dharma_id", dharma.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "dharma")
}

// Delete implements store.DharmaStore.Delete
func (s *PostgresDharmaStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM dharmas WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		s.logger.Error("failed to delete dharma",
			slog.String("dharma_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "dharma")
}

// ListByUser implements store.DharmaStore.ListByUser
func (s *PostgresDharmaStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	includeHidden bool,
) ([]*domain.Dharma, error) {
	query := fmt.Sprintf(`SELECT %s FROM dharmas WHERE user_id = $1`, dharmaColumns)
	if !includeHidden {
		query += ` AND hidden = false`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		s.logger.Error("failed to list dharmas",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var dharmas []*domain.Dharma
	for rows.Next() {
		var dharma domain.Dharma
		err := rows.Scan(
			&dharma.ID,
			&dharma.UserID,
			&dharma.Name,
			&dharma.Color,
			&dharma.Hidden,
			&dharma.CreatedAt,
			&dharma.UpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		dharmas = append(dharmas, &dharma)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return dharmas, nil
}

// CountByUser implements store.DharmaStore.CountByUser
func (s *PostgresDharmaStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM dharmas WHERE user_id = $1`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// WithTx implements store.DharmaStore.WithTx
func (s *PostgresDharmaStore) WithTx(tx *sql.Tx) store.DharmaStore {
	return &PostgresDharmaStore{
		db:     tx,
		logger: s.logger,
	}
}
