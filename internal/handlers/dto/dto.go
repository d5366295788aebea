package dto

import (
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/models/user"
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Priority    *int    `json:"priority"`
}

func (r CreateTaskRequest) ToDraft() task.Draft {
	draft := task.Draft{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
	}
	if r.Priority != nil {
		draft.Priority = task.Priority(*r.Priority)
	}
	return draft
}

type TaskResponse struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Date        *string       `json:"date"`
	Time        *string       `json:"time"`
	Priority    task.Priority `json:"priority"`
	Done        bool          `json:"done"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date,
		Time:        t.Time,
		Priority:    t.Priority,
		Done:        t.Done,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

// ToTask - обратное преобразование для клиента API
func (r TaskResponse) ToTask() *task.Task {
	return &task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Priority:    r.Priority,
		Done:        r.Done,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type TaskEnvelope struct {
	Task TaskResponse `json:"task"`
}

type TaskListEnvelope struct {
	Tasks []TaskResponse `json:"tasks"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  *string   `json:"name"`
	Image *string   `json:"image"`
}

func FromUser(u user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Image: u.Image}
}

type SessionResponse struct {
	User    UserResponse `json:"user"`
	Expires time.Time    `json:"expires"`
}

// TokenResponse - ответ колбэка входа для терминального клиента
type TokenResponse struct {
	SessionToken string    `json:"session_token"`
	Expires      time.Time `json:"expires"`
}

type ErrorResponse struct {
	Error     string         `json:"error"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
	RequestID string         `json:"request_id"`
}
