package task

import (
	"bytes"
	"encoding/json"
	"time"
)

// Optional хранит значение и признак того, что поле было передано
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Patch - частичное обновление задачи. Перечислены только поля, которые
// пользователь может менять; id, владелец и метки времени сюда не попадают.
type Patch struct {
	Title       Optional[string]
	Description Optional[*string]
	Date        Optional[*string]
	Time        Optional[*string]
	Priority    Optional[Priority]
	Done        Optional[bool]
}

func (p Patch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Date.Set &&
		!p.Time.Set && !p.Priority.Set && !p.Done.Set
}

// Normalize приводит переданные поля к хранимому виду
func (p Patch) Normalize() (Patch, error) {
	out := p
	var err error

	if p.Title.Set {
		if out.Title.Value, err = NormalizeTitle(p.Title.Value); err != nil {
			return Patch{}, err
		}
	}
	if p.Description.Set {
		out.Description.Value = NormalizeText(p.Description.Value)
	}
	if p.Date.Set {
		if out.Date.Value, err = NormalizeDate(p.Date.Value); err != nil {
			return Patch{}, err
		}
	}
	if p.Time.Set {
		if out.Time.Value, err = NormalizeTime(p.Time.Value); err != nil {
			return Patch{}, err
		}
	}
	if p.Priority.Set {
		if err = ValidatePriority(p.Priority.Value); err != nil {
			return Patch{}, err
		}
	}
	return out, nil
}

// Apply переносит переданные поля в задачу. UpdatedAt не трогается.
func (p Patch) Apply(t *Task) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = cloneString(p.Description.Value)
	}
	if p.Date.Set {
		t.Date = cloneString(p.Date.Value)
	}
	if p.Time.Set {
		t.Time = cloneString(p.Time.Value)
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.Done.Set {
		t.Done = p.Done.Value
	}
}

func (p Patch) MarshalJSON() ([]byte, error) {
	body := make(map[string]any)
	if p.Title.Set {
		body["title"] = p.Title.Value
	}
	if p.Description.Set {
		body["description"] = p.Description.Value
	}
	if p.Date.Set {
		body["date"] = p.Date.Value
	}
	if p.Time.Set {
		body["time"] = p.Time.Value
	}
	if p.Priority.Set {
		body["priority"] = p.Priority.Value
	}
	if p.Done.Set {
		body["done"] = p.Done.Value
	}
	return json.Marshal(body)
}

// UnmarshalJSON различает отсутствующее поле, null и значение.
// Неизвестные ключи (id, user_id, created_at ...) игнорируются.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out Patch
	for key, value := range raw {
		isNull := bytes.Equal(bytes.TrimSpace(value), []byte("null"))

		switch key {
		case "title":
			if isNull {
				return &FieldError{Field: key, Reason: "название не может быть пустым"}
			}
			var v string
			if err := json.Unmarshal(value, &v); err != nil {
				return &FieldError{Field: key, Reason: "ожидается строка"}
			}
			out.Title = Some(v)
		case "description", "date", "time":
			var v *string
			if !isNull {
				var s string
				if err := json.Unmarshal(value, &s); err != nil {
					return &FieldError{Field: key, Reason: "ожидается строка или null"}
				}
				v = &s
			}
			switch key {
			case "description":
				out.Description = Some(v)
			case "date":
				out.Date = Some(v)
			default:
				out.Time = Some(v)
			}
		case "priority":
			var v int
			if isNull || json.Unmarshal(value, &v) != nil {
				return &FieldError{Field: key, Reason: "допустимые значения: 1, 2, 3"}
			}
			out.Priority = Some(Priority(v))
		case "done":
			var v bool
			if isNull || json.Unmarshal(value, &v) != nil {
				return &FieldError{Field: key, Reason: "ожидается true или false"}
			}
			out.Done = Some(v)
		}
	}

	*p = out
	return nil
}

// NextUpdatedAt - следующее значение updated_at, строго больше предыдущего
func NextUpdatedAt(prev time.Time, now time.Time) time.Time {
	if !now.After(prev) {
		return prev.Add(time.Microsecond)
	}
	return now
}
