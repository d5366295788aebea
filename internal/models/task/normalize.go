package task

import (
	"fmt"
	"strings"
	"time"
)

// FieldError - значение поля не прошло проверку
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", &FieldError{Field: "title", Reason: "название не может быть пустым"}
	}
	return title, nil
}

// NormalizeText обрезает пробелы; пустая строка превращается в nil
func NormalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func NormalizeDate(s *string) (*string, error) {
	v := NormalizeText(s)
	if v == nil {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, *v)
	if err != nil {
		return nil, &FieldError{Field: "date", Reason: "ожидается формат YYYY-MM-DD"}
	}
	out := d.Format(DateLayout)
	return &out, nil
}

// NormalizeTime принимает HH:MM или HH:MM:SS, секунды отбрасываются
func NormalizeTime(s *string) (*string, error) {
	v := NormalizeText(s)
	if v == nil {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, *v)
	if err != nil {
		t, err = time.Parse("15:04:05", *v)
		if err != nil {
			return nil, &FieldError{Field: "time", Reason: "ожидается формат HH:MM"}
		}
	}
	out := t.Format(TimeLayout)
	return &out, nil
}

func ValidatePriority(p Priority) error {
	if !p.Valid() {
		return &FieldError{Field: "priority", Reason: "допустимые значения: 1, 2, 3"}
	}
	return nil
}
