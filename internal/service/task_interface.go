package service

import (
	"context"
	"taskPlanner/internal/models/task"

	"github.com/google/uuid"
)

// TaskRepository - хранилище задач; каждая операция ограничена владельцем
type TaskRepository interface {
	List(context.Context, uuid.UUID, task.Filter) ([]*task.Task, error)
	Create(context.Context, *task.Task) error
	Update(context.Context, uuid.UUID, uuid.UUID, task.Patch) (*task.Task, error)
	Delete(context.Context, uuid.UUID, uuid.UUID) error
	HealthCheck(context.Context) error
}
