package task

import (
	"time"

	"github.com/google/uuid"
)

// Task - одна запись планировщика. Владелец задаётся при создании и не меняется.
type Task struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"-" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Date        *string   `json:"date" db:"date"`
	Time        *string   `json:"time" db:"time"`
	Priority    Priority  `json:"priority" db:"priority"`
	Done        bool      `json:"done" db:"done"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Priority int

const PriorityUrgent Priority = 1
const PriorityMedium Priority = 2
const PriorityLow Priority = 3

const DefaultPriority = PriorityMedium

const DateLayout = "2006-01-02"
const TimeLayout = "15:04"

func (p Priority) Valid() bool {
	return p >= PriorityUrgent && p <= PriorityLow
}

func (p Priority) Label() string {
	switch p {
	case PriorityUrgent:
		return "Срочно"
	case PriorityMedium:
		return "Средний"
	case PriorityLow:
		return "Низкий"
	default:
		return "?"
	}
}

func (t *Task) HasDate() bool {
	return t.Date != nil && *t.Date != ""
}

func (t *Task) HasTime() bool {
	return t.Time != nil && *t.Time != ""
}

// Clone возвращает копию задачи без общих указателей
func (t Task) Clone() Task {
	c := t
	c.Description = cloneString(t.Description)
	c.Date = cloneString(t.Date)
	c.Time = cloneString(t.Time)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
