package service

import (
	"context"
	"errors"
	"fmt"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/task"
	rep "taskPlanner/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) List(ctx context.Context, userID uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	if userID == uuid.Nil {
		return nil, NewUnauthorized()
	}

	tasks, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, draft task.Draft) (*task.Task, error) {
	if userID == uuid.Nil {
		return nil, NewUnauthorized()
	}

	normalized, err := draft.Normalize()
	if err != nil {
		if busErr, ok := FromFieldError(err); ok {
			return nil, busErr
		}
		return nil, err
	}

	created := task.New(userID, normalized.Title, normalized.Options()...)
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	logger.Info("Service: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.String("user_id", userID.String()))
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, userID, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	if userID == uuid.Nil {
		return nil, NewUnauthorized()
	}
	if patch.IsEmpty() {
		return nil, NewNothingToUpdate()
	}

	normalized, err := patch.Normalize()
	if err != nil {
		if busErr, ok := FromFieldError(err); ok {
			return nil, busErr
		}
		return nil, err
	}

	updated, err := s.repo.Update(ctx, userID, id, normalized)
	if err != nil {
		switch {
		case errors.Is(err, rep.ErrNotFound):
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		case errors.Is(err, rep.ErrEmptyUpdate):
			return nil, NewNothingToUpdate()
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return NewUnauthorized()
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return NewNotFound("задача", id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
