package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrTaskNotLoaded = errors.New("задача не загружена")

// API - операции сервера, которыми пользуется Store
type API interface {
	List(ctx context.Context, filter task.Filter) ([]*task.Task, error)
	Create(ctx context.Context, req dto.CreateTaskRequest) (*task.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// MutationState: pending -> confirmed | rolled_back
type MutationState string

const (
	StatePending    MutationState = "pending"
	StateConfirmed  MutationState = "confirmed"
	StateRolledBack MutationState = "rolled_back"
)

type Mutation struct {
	Seq    uint64
	Kind   MutationKind
	TaskID uuid.UUID
	State  MutationState
	Err    error
}

// Observer получает каждый переход изменения. Вызывается без удержания
// блокировки хранилища, поэтому может читать Tasks().
type Observer func(Mutation)

// Store держит список задач пользователя в памяти. Обновление и удаление
// применяются сразу, до ответа сервера; при ошибке список целиком
// перечитывается с сервера, и ошибка возвращается вызывающему.
type Store struct {
	api API

	mu        sync.RWMutex
	tasks     []*task.Task
	observers []Observer

	seq atomic.Uint64
}

func NewStore(api API) *Store {
	return &Store{api: api}
}

func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Tasks возвращает копию текущего списка
func (s *Store) Tasks() []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*task.Task, len(s.tasks))
	for i, t := range s.tasks {
		c := t.Clone()
		out[i] = &c
	}
	return out
}

func (s *Store) Get(id uuid.UUID) (*task.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		c := s.tasks[i].Clone()
		return &c, true
	}
	return nil, false
}

// Refresh заменяет список ответом сервера
func (s *Store) Refresh(ctx context.Context) error {
	tasks, err := s.api.List(ctx, task.Filter{})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return nil
}

// Create ждёт ответа сервера: у новой задачи нет id до подтверждения.
// Подтверждённая задача добавляется в начало списка.
func (s *Store) Create(ctx context.Context, req dto.CreateTaskRequest) (*task.Task, error) {
	m := s.begin(MutationCreate, uuid.Nil)

	created, err := s.api.Create(ctx, req)
	if err != nil {
		s.finish(m, err)
		return nil, err
	}

	s.mu.Lock()
	s.tasks = append([]*task.Task{created}, s.tasks...)
	s.mu.Unlock()

	m.TaskID = created.ID
	s.finish(m, nil)
	c := created.Clone()
	return &c, nil
}

// Update сразу применяет patch к локальной строке, затем заменяет её
// строкой сервера. При ошибке список перечитывается.
func (s *Store) Update(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		optimistic := s.tasks[i].Clone()
		patch.Apply(&optimistic)
		s.tasks[i] = &optimistic
	}
	s.mu.Unlock()

	m := s.begin(MutationUpdate, id)

	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		s.rollback(ctx, m, err)
		return nil, err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks[i] = updated
	}
	s.mu.Unlock()

	s.finish(m, nil)
	c := updated.Clone()
	return &c, nil
}

// Toggle переключает признак выполнения по текущему локальному значению
func (s *Store) Toggle(ctx context.Context, id uuid.UUID) (*task.Task, error) {
	current, ok := s.Get(id)
	if !ok {
		return nil, ErrTaskNotLoaded
	}
	return s.Update(ctx, id, task.Patch{Done: task.Some(!current.Done)})
}

// Move переносит задачу на другую дату; nil снимает дату
func (s *Store) Move(ctx context.Context, id uuid.UUID, date *string) (*task.Task, error) {
	return s.Update(ctx, id, task.Patch{Date: task.Some(date)})
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()

	m := s.begin(MutationDelete, id)

	if err := s.api.Delete(ctx, id); err != nil {
		s.rollback(ctx, m, err)
		return err
	}

	s.finish(m, nil)
	return nil
}

func (s *Store) rollback(ctx context.Context, m Mutation, cause error) {
	if err := s.Refresh(ctx); err != nil {
		logger.Warn("Не удалось перечитать список после ошибки",
			zap.String("mutation", string(m.Kind)),
			zap.String("task_id", m.TaskID.String()),
			zap.Error(err),
		)
	}
	s.finish(m, cause)
}

func (s *Store) begin(kind MutationKind, id uuid.UUID) Mutation {
	m := Mutation{
		Seq:    s.seq.Add(1),
		Kind:   kind,
		TaskID: id,
		State:  StatePending,
	}
	s.notify(m)
	return m
}

func (s *Store) finish(m Mutation, err error) {
	if err != nil {
		m.State = StateRolledBack
		m.Err = err
	} else {
		m.State = StateConfirmed
	}
	s.notify(m)
}

func (s *Store) notify(m Mutation) {
	s.mu.RLock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.RUnlock()

	for _, o := range observers {
		o(m)
	}
}

// вызывать под блокировкой
func (s *Store) indexOf(id uuid.UUID) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
