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

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// taskColumns lists the columns selected for every task row scan, in the
// order consumed by scanTask.
const taskColumns = `id, user_id, dharma_id, title, description, karma_type,
	effort_level, status, hidden, snoozed_until, completed_at, created_at, updated_at`

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, user_id, dharma_id, title, description, karma_type,
			effort_level, status, hidden, snoozed_until, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.DharmaID,
		task.Title,
		nullString(task.Description),
		nullString(string(task.KarmaType)),
		nullString(string(task.EffortLevel)),
		string(task.Status),
		task.Hidden,
		task.SnoozedUntil,
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// GetByIDAndUser implements store.TaskStore.GetByIDAndUser
func (s *PostgresTaskStore) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE id = $1 AND user_id = $2`, taskColumns)

	row := s.db.QueryRowContext(ctx, query, id, userID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, karma_type = $3, effort_level = $4,
			status = $5, hidden = $6, snoozed_until = $7, completed_at = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		nullString(task.Description),
		nullString(string(task.KarmaType)),
		nullString(string(task.EffortLevel)),
		string(task.Status),
		task.Hidden,
		task.SnoozedUntil,
		task.CompletedAt,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		s.logger.Error("failed to update task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "task")
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		s.logger.Error("failed to delete task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return CheckRowsAffected(result, "task")
}

// CountByUserAndStatus implements store.TaskStore.CountByUserAndStatus
func (s *PostgresTaskStore) CountByUserAndStatus(
	ctx context.Context,
	userID uuid.UUID,
	status domain.TaskStatus,
) (int, error) {
	query := `SELECT count(*) FROM tasks WHERE user_id = $1 AND status = $2`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, string(status)).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// List implements store.TaskStore.List
// It picks the narrowest query shape matching the present filters.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.TaskFilter,
	page store.Page,
) ([]*domain.Task, error) {
	var query string
	var args []any

	base := fmt.Sprintf(`SELECT %s FROM tasks WHERE user_id = $1`, taskColumns)
	args = append(args, userID)

	switch {
	case filter.DharmaID != nil && filter.Status != nil:
		query = base + ` AND dharma_id = $2 AND status = $3 ORDER BY created_at DESC OFFSET $4 LIMIT $5`
		args = append(args, *filter.DharmaID, string(*filter.Status), page.Offset, page.Limit)
	case filter.DharmaID != nil:
		query = base + ` AND dharma_id = $2 ORDER BY created_at DESC OFFSET $3 LIMIT $4`
		args = append(args, *filter.DharmaID, page.Offset, page.Limit)
	case filter.Status != nil:
		query = base + ` AND status = $2 ORDER BY created_at DESC OFFSET $3 LIMIT $4`
		args = append(args, string(*filter.Status), page.Offset, page.Limit)
	default:
		query = base + ` ORDER BY created_at DESC OFFSET $2 LIMIT $3`
		args = append(args, page.Offset, page.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to list tasks",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// ListUserIDsWithStatus implements store.TaskStore.ListUserIDsWithStatus
func (s *PostgresTaskStore) ListUserIDsWithStatus(
	ctx context.Context,
	status domain.TaskStatus,
) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT user_id FROM tasks WHERE status = $1`

	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return userIDs, nil
}

// GetNewestByUserAndStatus implements store.TaskStore.GetNewestByUserAndStatus
func (s *PostgresTaskStore) GetNewestByUserAndStatus(
	ctx context.Context,
	userID uuid.UUID,
	status domain.TaskStatus,
) (*domain.Task, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tasks
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`, taskColumns)

	row := s.db.QueryRowContext(ctx, query, userID, string(status))
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}

	return task, nil
}

// CountActiveByDharma implements store.TaskStore.CountActiveByDharma
func (s *PostgresTaskStore) CountActiveByDharma(ctx context.Context, dharmaID uuid.UUID) (int, error) {
	query := `SELECT count(*) FROM tasks WHERE dharma_id = $1 AND status <> $2`

	var count int
	err := s.db.QueryRowContext(ctx, query, dharmaID, string(domain.StatusDone)).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}

	return count, nil
}

// SetHiddenByDharma implements store.TaskStore.SetHiddenByDharma
func (s *PostgresTaskStore) SetHiddenByDharma(ctx context.Context, dharmaID uuid.UUID, hidden bool) error {
	query := `UPDATE tasks SET hidden = $1, updated_at = now() WHERE dharma_id = $2`

	// Zero affected rows is fine here: a dharma without tasks has nothing to cascade.
	_, err := s.db.ExecContext(ctx, query, hidden, dharmaID)
	if err != nil {
		s.logger.Error("failed to cascade hidden flag",
			slog.String("dharma_id", dharmaID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	return nil
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning code.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row in taskColumns order, normalizing any legacy
// status value still present in old rows.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description, karmaType, effortLevel sql.NullString
	var status string

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.DharmaID,
		&task.Title,
		&description,
		&karmaType,
		&effortLevel,
		&status,
		&task.Hidden,
		&task.SnoozedUntil,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.KarmaType = domain.KarmaType(karmaType.String)
	task.EffortLevel = domain.EffortLevel(effortLevel.String)

	parsed, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	task.Status = parsed

	return &task, nil
}

// nullString maps the empty string to NULL for optional text columns.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
