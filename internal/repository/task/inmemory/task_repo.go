package inmemory

import (
	"context"
	"fmt"
	"sync"
	"taskPlanner/internal/models/task"
	repo "taskPlanner/internal/repository"
	"time"

	"github.com/google/uuid"
)

// TaskStorage хранит задачи в памяти процесса. Возвращает копии, чтобы
// вызывающий код не мог изменить сохранённые строки в обход Update.
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
		now:     time.Now,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) List(ctx context.Context, userID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.UserID != userID || !filter.Matches(t) {
			continue
		}
		c := t.Clone()
		res = append(res, &c)
	}

	task.SortStored(res)
	return res, nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.ID == uuid.Nil {
		taskToCreate.ID = uuid.New()
	}
	if _, exists := s.storage[taskToCreate.ID]; exists {
		return fmt.Errorf("задача %s уже существует", taskToCreate.ID)
	}

	now := s.now()
	taskToCreate.CreatedAt = now
	taskToCreate.UpdatedAt = now

	stored := taskToCreate.Clone()
	s.storage[stored.ID] = &stored
	s.ids = append(s.ids, stored.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, userID, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	if patch.IsEmpty() {
		return nil, repo.ErrEmptyUpdate
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.UserID != userID {
		return nil, fmt.Errorf("задача %s: %w", id, repo.ErrNotFound)
	}

	patch.Apply(existing)
	existing.UpdatedAt = task.NextUpdatedAt(existing.UpdatedAt, s.now())

	c := existing.Clone()
	return &c, nil
}

func (s *TaskStorage) Delete(ctx context.Context, userID, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok || existing.UserID != userID {
		return fmt.Errorf("задача %s: %w", id, repo.ErrNotFound)
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}
