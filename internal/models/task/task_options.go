package task

import (
	"time"

	"github.com/google/uuid"
)

// TaskOption настраивает новую задачу. nil-опции пропускаются.
type TaskOption func(*Task)

func New(userID uuid.UUID, title string, options ...TaskOption) *Task {
	now := time.Now()
	t := &Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Priority:  DefaultPriority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func WithDescription(description *string) TaskOption {
	if description == nil {
		return nil
	}
	return func(task *Task) {
		task.Description = cloneString(description)
	}
}

func WithDate(date *string) TaskOption {
	if date == nil {
		return nil
	}
	return func(task *Task) {
		task.Date = cloneString(date)
	}
}

func WithTime(clock *string) TaskOption {
	if clock == nil {
		return nil
	}
	return func(task *Task) {
		task.Time = cloneString(clock)
	}
}

func WithPriority(priority Priority) TaskOption {
	if !priority.Valid() {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

// Draft - входные данные для создания задачи до нормализации
type Draft struct {
	Title       string
	Description *string
	Date        *string
	Time        *string
	Priority    Priority
}

// Normalize обрезает строки, пустые значения превращает в nil и проверяет поля.
// Нулевой приоритет заменяется значением по умолчанию.
func (d Draft) Normalize() (Draft, error) {
	var err error
	out := Draft{Priority: d.Priority}

	if out.Title, err = NormalizeTitle(d.Title); err != nil {
		return Draft{}, err
	}
	out.Description = NormalizeText(d.Description)
	if out.Date, err = NormalizeDate(d.Date); err != nil {
		return Draft{}, err
	}
	if out.Time, err = NormalizeTime(d.Time); err != nil {
		return Draft{}, err
	}
	if out.Priority == 0 {
		out.Priority = DefaultPriority
	}
	if err := ValidatePriority(out.Priority); err != nil {
		return Draft{}, err
	}
	return out, nil
}

func (d Draft) Options() []TaskOption {
	return []TaskOption{
		WithDescription(d.Description),
		WithDate(d.Date),
		WithTime(d.Time),
		WithPriority(d.Priority),
	}
}
