package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oriontask/orion-api/internal/domain"
	"github.com/oriontask/orion-api/internal/store"
)

// fakeTaskStore is an in-memory TaskStore. It is safe for concurrent use so
// the capacity race tests can hammer it from multiple goroutines.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func copyTask(t *domain.Task) *domain.Task {
	cp := *t
	if t.SnoozedUntil != nil {
		v := *t.SnoozedUntil
		cp.SnoozedUntil = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		cp.CompletedAt = &v
	}
	return &cp
}

// seed inserts a task directly, bypassing service logic. Tests use it to set
// up exact states, including explicit CreatedAt values for ordering checks.
func (s *fakeTaskStore) seed(t *domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = copyTask(t)
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = copyTask(task)
	return nil
}

func (s *fakeTaskStore) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(task), nil
}

func (s *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	s.tasks[task.ID] = copyTask(task)
	return nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskStore) CountByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.TaskStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, task := range s.tasks {
		if task.UserID == userID && task.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *fakeTaskStore) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter, page store.Page) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Task
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.DharmaID != nil && task.DharmaID != *filter.DharmaID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		out = append(out, copyTask(task))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if page.Offset >= len(out) {
		return nil, nil
	}
	out = out[page.Offset:]
	if page.Limit > 0 && page.Limit < len(out) {
		out = out[:page.Limit]
	}
	return out, nil
}

func (s *fakeTaskStore) ListUserIDsWithStatus(ctx context.Context, status domain.TaskStatus) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, task := range s.tasks {
		if task.Status == status && !seen[task.UserID] {
			seen[task.UserID] = true
			out = append(out, task.UserID)
		}
	}
	return out, nil
}

func (s *fakeTaskStore) GetNewestByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.TaskStatus) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest *domain.Task
	for _, task := range s.tasks {
		if task.UserID != userID || task.Status != status {
			continue
		}
		if newest == nil || task.CreatedAt.After(newest.CreatedAt) {
			newest = task
		}
	}
	if newest == nil {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(newest), nil
}

func (s *fakeTaskStore) CountActiveByDharma(ctx context.Context, dharmaID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, task := range s.tasks {
		if task.DharmaID == dharmaID && task.Status != domain.StatusDone {
			count++
		}
	}
	return count, nil
}

func (s *fakeTaskStore) SetHiddenByDharma(ctx context.Context, dharmaID uuid.UUID, hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.DharmaID == dharmaID {
			task.Hidden = hidden
			task.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (s *fakeTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return s
}

// fakeDharmaStore is an in-memory DharmaStore.
type fakeDharmaStore struct {
	mu      sync.Mutex
	dharmas map[uuid.UUID]*domain.Dharma
}

func newFakeDharmaStore() *fakeDharmaStore {
	return &fakeDharmaStore{dharmas: make(map[uuid.UUID]*domain.Dharma)}
}

func copyDharma(d *domain.Dharma) *domain.Dharma {
	cp := *d
	return &cp
}

func (s *fakeDharmaStore) seed(d *domain.Dharma) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dharmas[d.ID] = copyDharma(d)
}

func (s *fakeDharmaStore) Create(ctx context.Context, dharma *domain.Dharma) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dharmas[dharma.ID] = copyDharma(dharma)
	return nil
}

func (s *fakeDharmaStore) GetByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*domain.Dharma, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dharma, ok := s.dharmas[id]
	if !ok || dharma.UserID != userID {
		return nil, store.ErrDharmaNotFound
	}
	return copyDharma(dharma), nil
}

func (s *fakeDharmaStore) Update(ctx context.Context, dharma *domain.Dharma) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.dharmas[dharma.ID]
	if !ok || existing.UserID != dharma.UserID {
		return store.ErrDharmaNotFound
	}
	s.dharmas[dharma.ID] = copyDharma(dharma)
	return nil
}

func (s *fakeDharmaStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dharma, ok := s.dharmas[id]
	if !ok || dharma.UserID != userID {
		return store.ErrDharmaNotFound
	}
	delete(s.dharmas, id)
	return nil
}

func (s *fakeDharmaStore) ListByUser(ctx context.Context, userID uuid.UUID, includeHidden bool) ([]*domain.Dharma, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Dharma
	for _, dharma := range s.dharmas {
		if dharma.UserID != userID {
			continue
		}
		if dharma.Hidden && !includeHidden {
			continue
		}
		out = append(out, copyDharma(dharma))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeDharmaStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, dharma := range s.dharmas {
		if dharma.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (s *fakeDharmaStore) WithTx(tx *sql.Tx) store.DharmaStore {
	return s
}

var (
	_ store.TaskStore   = (*fakeTaskStore)(nil)
	_ store.DharmaStore = (*fakeDharmaStore)(nil)
)
