package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/domain/policy"
	"github.com/oriontask/orion-api/internal/platform/logger"
	"github.com/oriontask/orion-api/internal/store"
)

// CreateTaskInput carries the caller-supplied fields for a new task.
type CreateTaskInput struct {
	DharmaID    uuid.UUID
	Title       string
	Description string
	KarmaType   domain.KarmaType
	EffortLevel domain.EffortLevel
}

// UpdateTaskInput carries partial edits for an existing task. Only non-nil
// fields overwrite the stored values; status is never edited here.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	KarmaType   *domain.KarmaType
	EffortLevel *domain.EffortLevel
	Hidden      *bool
}

// TaskService is the scheduling orchestrator. Every operation follows the
// same shape: load the task scoped to its owner, consult the transition
// policy (and, for transitions into an active slot, the capacity gate), then
// persist. Capacity-relevant operations additionally serialize per user so
// the check-then-write cannot race.
type TaskService struct {
	db      *sql.DB
	tasks   store.TaskStore
	dharmas store.DharmaStore
	policy  *policy.TransitionPolicy
	locks   *userLocks
	logger  *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	db *sql.DB,
	tasks store.TaskStore,
	dharmas store.DharmaStore,
	transitionPolicy *policy.TransitionPolicy,
	logger *slog.Logger,
) *TaskService {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks store cannot be nil")
	}
	if dharmas == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("dharmas store cannot be nil")
	}
	if transitionPolicy == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("transition policy cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskService{
		db:      db,
		tasks:   tasks,
		dharmas: dharmas,
		policy:  transitionPolicy,
		locks:   newUserLocks(),
		logger:  logger.With(slog.String("component", "task_service")),
	}
}

// Create builds a task from the input under one of the user's dharmas. The
// initial status is decided by current capacity: StatusNow when an active
// slot is free, StatusWaiting otherwise. The task inherits the dharma's
// hidden flag.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	unlock := s.locks.acquire(userID)
	defer unlock()

	var created *domain.Task
	err := s.runInTx(ctx, func(ctx context.Context, tasks store.TaskStore, dharmas store.DharmaStore) error {
		dharma, err := dharmas.GetByIDAndUser(ctx, input.DharmaID, userID)
		if err != nil {
			if errors.Is(err, store.ErrDharmaNotFound) {
				log.Warn("dharma not found for task creation",
					slog.String("user_id", userID.String()),
					slog.String("dharma_id", input.DharmaID.String()))
				return store.ErrDharmaNotFound
			}
			return fmt.Errorf("failed to get dharma: %w", err)
		}

		activeCount, err := tasks.CountByUserAndStatus(ctx, userID, domain.StatusNow)
		if err != nil {
			return fmt.Errorf("failed to count active tasks: %w", err)
		}

		status := domain.StatusNow
		if activeCount >= s.policy.MaxNowTasks() {
			status = domain.StatusWaiting
		}

		task, err := domain.NewTask(userID, dharma.ID, input.Title, input.Description, status)
		if err != nil {
			return err
		}
		task.KarmaType = input.KarmaType
		task.EffortLevel = input.EffortLevel
		task.Hidden = dharma.Hidden

		if err := task.Validate(); err != nil {
			return err
		}

		if err := tasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		created = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("status", created.Status.String()))
	return created, nil
}

// Update applies partial field edits to a task. Completed tasks reject edits.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, input UpdateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := s.runInTx(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.DharmaStore) error {
		task, err := tasks.GetByIDAndUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := s.policy.EnsureTransitionAllowed(task, false); err != nil {
			return err
		}

		if input.Title != nil {
			task.Title = *input.Title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.KarmaType != nil {
			task.KarmaType = *input.KarmaType
		}
		if input.EffortLevel != nil {
			task.EffortLevel = *input.EffortLevel
		}
		if input.Hidden != nil {
			task.Hidden = *input.Hidden
		}
		task.UpdatedAt = time.Now().UTC()

		if err := task.Validate(); err != nil {
			return err
		}

		if err := tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return updated, nil
}

// MoveToNow moves a task straight into an active slot, subject to the
// capacity gate.
func (s *TaskService) MoveToNow(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	unlock := s.locks.acquire(userID)
	defer unlock()

	var moved *domain.Task
	err := s.runInTx(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.DharmaStore) error {
		task, err := tasks.GetByIDAndUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := s.policy.EnsureTransitionAllowed(task, false); err != nil {
			return err
		}

		activeCount, err := tasks.CountByUserAndStatus(ctx, userID, domain.StatusNow)
		if err != nil {
			return fmt.Errorf("failed to count active tasks: %w", err)
		}
		if err := s.policy.EnsureCapacity(activeCount, nil); err != nil {
			return err
		}

		if err := s.policy.MarkActive(task); err != nil {
			return err
		}

		if err := tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		moved = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task moved to now",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return moved, nil
}

// ChangeStatus applies a generic status transition. Snoozed targets branch to
// the snooze path so the wake time is computed; transitions into an active
// slot are gated by capacity. Legacy status aliases are expected to have been
// normalized by domain.ParseTaskStatus at the API boundary.
func (s *TaskService) ChangeStatus(
	ctx context.Context,
	userID, taskID uuid.UUID,
	newStatus domain.TaskStatus,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, newStatus)
	}

	unlock := s.locks.acquire(userID)
	defer unlock()

	var changed *domain.Task
	err := s.runInTx(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.DharmaStore) error {
		task, err := tasks.GetByIDAndUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := s.policy.EnsureTransitionAllowed(task, false); err != nil {
			return err
		}

		activeCount, err := tasks.CountByUserAndStatus(ctx, userID, domain.StatusNow)
		if err != nil {
			return fmt.Errorf("failed to count active tasks: %w", err)
		}
		if err := s.policy.EnsureCapacity(activeCount, &newStatus); err != nil {
			return err
		}

		switch newStatus {
		case domain.StatusSnoozed:
			s.policy.Snooze(task)
		case domain.StatusDone:
			// Completion always goes through MarkDone so CompletedAt is stamped.
			if err := s.policy.MarkDone(task); err != nil {
				return err
			}
		default:
			if err := s.policy.ApplyTransition(task, newStatus); err != nil {
				return err
			}
		}

		if err := tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		changed = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task status changed",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()),
		slog.String("status", newStatus.String()))
	return changed, nil
}

// SnoozeTask puts a task aside until its wake time. Distinct entry point from
// ChangeStatus for ergonomic reasons; same guarantees.
func (s *TaskService) SnoozeTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var snoozed *domain.Task
	err := s.runInTx(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.DharmaStore) error {
		task, err := tasks.GetByIDAndUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := s.policy.EnsureTransitionAllowed(task, false); err != nil {
			return err
		}

		s.policy.Snooze(task)

		if err := tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		snoozed = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task snoozed",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()),
		slog.Time("snoozed_until", *snoozed.SnoozedUntil))
	return snoozed, nil
}

// MarkAsDone completes a task. MarkDone self-checks the terminal state, so a
// second call fails with policy.ErrAlreadyCompleted and leaves the original
// completion time untouched.
func (s *TaskService) MarkAsDone(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var done *domain.Task
	err := s.runInTx(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.DharmaStore) error {
		task, err := tasks.GetByIDAndUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := s.policy.MarkDone(task); err != nil {
			return err
		}

		if err := tasks.Update(ctx, task); err != nil {
			return fmt.Errorf("failed to save task: %w", err)
		}

		done = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task completed",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return done, nil
}

// Delete hard-deletes a task. Completed tasks are kept as history and reject
// deletion with policy.ErrDeletionNotAllowed.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runInTx(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.DharmaStore) error {
		task, err := tasks.GetByIDAndUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := s.policy.EnsureTransitionAllowed(task, true); err != nil {
			return err
		}

		if err := tasks.Delete(ctx, task.ID, userID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// List returns a page of the user's tasks matching the optional filters.
func (s *TaskService) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	page store.Page,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if page.Limit <= 0 {
		page.Limit = defaultPageLimit
	}

	tasks, err := s.tasks.List(ctx, userID, filter, page)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("list_tasks", "failed to list tasks", err)
	}

	log.Debug("tasks listed",
		slog.String("user_id", userID.String()),
		slog.Int("returned", len(tasks)))
	return tasks, nil
}

// PromoteWaiting runs one reconciliation pass: for each user with at least
// one waiting task, promote the most recently created waiting task into a
// free active slot. At most one task per user is promoted per call; later
// passes pick up remaining capacity. Per-user failures are logged and the
// pass continues with the next user.
func (s *TaskService) PromoteWaiting(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	userIDs, err := s.tasks.ListUserIDsWithStatus(ctx, domain.StatusWaiting)
	if err != nil {
		return NewServiceError("promote_waiting", "failed to list users with waiting tasks", err)
	}

	promoted := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.promoteOne(ctx, userID); err != nil {
			if errors.Is(err, policy.ErrActiveLimitExceeded) || errors.Is(err, store.ErrTaskNotFound) {
				continue
			}
			log.Error("failed to promote waiting task",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			continue
		}
		promoted++
	}

	log.Debug("promotion pass finished",
		slog.Int("users_considered", len(userIDs)),
		slog.Int("promoted", promoted))
	return nil
}

// promoteOne promotes a single waiting task for one user, sharing the same
// per-user serialization and transactional discipline as foreground
// operations so the sweep cannot push a user over capacity.
func (s *TaskService) promoteOne(ctx context.Context, userID uuid.UUID) error {
	unlock := s.locks.acquire(userID)
	defer unlock()

	return s.runInTx(ctx, func(ctx context.Context, tasks store.TaskStore, _ store.DharmaStore) error {
		activeCount, err := tasks.CountByUserAndStatus(ctx, userID, domain.StatusNow)
		if err != nil {
			return fmt.Errorf("failed to count active tasks: %w", err)
		}
		if err := s.policy.EnsureCapacity(activeCount, nil); err != nil {
			return err
		}

		task, err := tasks.GetNewestByUserAndStatus(ctx, userID, domain.StatusWaiting)
		if err != nil {
			return err
		}

		if err := s.policy.MarkActive(task); err != nil {
			return err
		}

		return tasks.Update(ctx, task)
	})
}

// defaultPageLimit bounds list queries when the caller supplies no limit.
const defaultPageLimit = 50

// runInTx executes fn with transactional stores. Store fakes used in tests do
// not provide a *sql.DB; with a nil db the function runs against the base
// stores directly.
func (s *TaskService) runInTx(
	ctx context.Context,
	fn func(ctx context.Context, tasks store.TaskStore, dharmas store.DharmaStore) error,
) error {
	if s.db == nil {
		return fn(ctx, s.tasks, s.dharmas)
	}

	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.tasks.WithTx(tx), s.dharmas.WithTx(tx))
	})
}
