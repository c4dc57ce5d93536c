package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/platform/logger"
	"github.com/oriontask/orion-api/internal/store"
)

// MaxDharmasPerUser caps how many dharmas a single user may hold.
const MaxDharmasPerUser = 8

// CreateDharmaInput carries the caller-supplied fields for a new dharma. An
// empty Color asks for a randomly assigned one.
type CreateDharmaInput struct {
	Name  string
	Color string
}

// UpdateDharmaInput carries partial edits for an existing dharma. The hidden
// flag is deliberately absent; visibility changes go through ToggleHidden so
// the cascade to tasks cannot be skipped.
type UpdateDharmaInput struct {
	Name  *string
	Color *string
}

// DharmaService manages the life-area groupings tasks belong to.
type DharmaService struct {
	db      *sql.DB
	dharmas store.DharmaStore
	tasks   store.TaskStore
	logger  *slog.Logger
}

// NewDharmaService creates a new DharmaService.
func NewDharmaService(
	db *sql.DB,
	dharmas store.DharmaStore,
	tasks store.TaskStore,
	logger *slog.Logger,
) *DharmaService {
	if dharmas == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("dharmas store cannot be nil")
	}
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DharmaService{
		db:      db,
		dharmas: dharmas,
		tasks:   tasks,
		logger:  logger.With(slog.String("component", "dharma_service")),
	}
}

// Create adds a dharma for the user, enforcing the per-user cap.
func (s *DharmaService) Create(ctx context.Context, userID uuid.UUID, input CreateDharmaInput) (*domain.Dharma, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var created *domain.Dharma
	err := s.runInTx(ctx, func(ctx context.Context, dharmas store.DharmaStore, _ store.TaskStore) error {
		count, err := dharmas.CountByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count dharmas: %w", err)
		}
		if count >= MaxDharmasPerUser {
			return ErrDharmaLimitExceeded
		}

		dharma, err := domain.NewDharma(userID, input.Name, input.Color)
		if err != nil {
			return err
		}

		if err := dharmas.Create(ctx, dharma); err != nil {
			return fmt.Errorf("failed to save dharma: %w", err)
		}

		created = dharma
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("dharma created",
		slog.String("dharma_id", created.ID.String()),
		slog.String("user_id", userID.String()))
	return created, nil
}

// Get returns one of the user's dharmas by id.
func (s *DharmaService) Get(ctx context.Context, userID, dharmaID uuid.UUID) (*domain.Dharma, error) {
	return s.dharmas.GetByIDAndUser(ctx, dharmaID, userID)
}

// List returns the user's dharmas, oldest first. Hidden dharmas are excluded
// unless includeHidden is set.
func (s *DharmaService) List(ctx context.Context, userID uuid.UUID, includeHidden bool) ([]*domain.Dharma, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	dharmas, err := s.dharmas.ListByUser(ctx, userID, includeHidden)
	if err != nil {
		log.Error("failed to list dharmas",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("list_dharmas", "failed to list dharmas", err)
	}
	return dharmas, nil
}

// Update applies partial field edits to a dharma.
func (s *DharmaService) Update(ctx context.Context, userID, dharmaID uuid.UUID, input UpdateDharmaInput) (*domain.Dharma, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Dharma
	err := s.runInTx(ctx, func(ctx context.Context, dharmas store.DharmaStore, _ store.TaskStore) error {
		dharma, err := dharmas.GetByIDAndUser(ctx, dharmaID, userID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			dharma.Name = *input.Name
		}
		if input.Color != nil {
			dharma.Color = *input.Color
		}
		dharma.UpdatedAt = time.Now().UTC()

		if err := dharma.Validate(); err != nil {
			return err
		}

		if err := dharmas.Update(ctx, dharma); err != nil {
			return fmt.Errorf("failed to save dharma: %w", err)
		}

		updated = dharma
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("dharma updated",
		slog.String("dharma_id", dharmaID.String()),
		slog.String("user_id", userID.String()))
	return updated, nil
}

// Delete removes a dharma. Deletion is refused while any of its tasks are
// still open; completed tasks do not block it.
func (s *DharmaService) Delete(ctx context.Context, userID, dharmaID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runInTx(ctx, func(ctx context.Context, dharmas store.DharmaStore, tasks store.TaskStore) error {
		dharma, err := dharmas.GetByIDAndUser(ctx, dharmaID, userID)
		if err != nil {
			return err
		}

		open, err := tasks.CountActiveByDharma(ctx, dharma.ID)
		if err != nil {
			return fmt.Errorf("failed to count open tasks: %w", err)
		}
		if open > 0 {
			return ErrDharmaHasTasks
		}

		if err := dharmas.Delete(ctx, dharma.ID, userID); err != nil {
			return fmt.Errorf("failed to delete dharma: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("dharma deleted",
		slog.String("dharma_id", dharmaID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// ToggleHidden flips a dharma's visibility and cascades the flag to every
// task under it, atomically.
func (s *DharmaService) ToggleHidden(ctx context.Context, userID, dharmaID uuid.UUID) (*domain.Dharma, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var toggled *domain.Dharma
	err := s.runInTx(ctx, func(ctx context.Context, dharmas store.DharmaStore, tasks store.TaskStore) error {
		dharma, err := dharmas.GetByIDAndUser(ctx, dharmaID, userID)
		if err != nil {
			return err
		}

		dharma.Hidden = !dharma.Hidden
		dharma.UpdatedAt = time.Now().UTC()

		if err := dharmas.Update(ctx, dharma); err != nil {
			return fmt.Errorf("failed to save dharma: %w", err)
		}
		if err := tasks.SetHiddenByDharma(ctx, dharma.ID, dharma.Hidden); err != nil {
			return fmt.Errorf("failed to cascade hidden flag: %w", err)
		}

		toggled = dharma
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("dharma visibility toggled",
		slog.String("dharma_id", dharmaID.String()),
		slog.String("user_id", userID.String()),
		slog.Bool("hidden", toggled.Hidden))
	return toggled, nil
}

func (s *DharmaService) runInTx(
	ctx context.Context,
	fn func(ctx context.Context, dharmas store.DharmaStore, tasks store.TaskStore) error,
) error {
	if s.db == nil {
		return fn(ctx, s.dharmas, s.tasks)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.dharmas.WithTx(tx), s.tasks.WithTx(tx))
	})
}
