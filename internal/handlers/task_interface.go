package handlers

import (
	"context"
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/models/user"

	"github.com/google/uuid"
)

type TaskService interface {
	List(ctx context.Context, userID uuid.UUID, filter task.Filter) ([]*task.Task, error)
	Create(ctx context.Context, userID uuid.UUID, draft task.Draft) (*task.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch task.Patch) (*task.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	HealthCheck(ctx context.Context) error
}

type AuthService interface {
	SignInURL(state string) string
	CompleteSignIn(ctx context.Context, code string) (*user.SessionAndUser, error)
	SignOut(ctx context.Context, token string) error
}
