package service

import (
	"errors"
	"fmt"
	"taskPlanner/internal/models/task"
)

const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNothingToUpdate = "NOTHING_TO_UPDATE"
	CodeBadRequest      = "BAD_REQUEST"
	CodeNotFound        = "NOT_FOUND"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewUnauthorized() *BusinessError {
	return NewBusinessError(CodeUnauthorized, "требуется вход в систему")
}

func NewNotFound(resource, id string) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %s не найден(а)", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id))
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason))
}

func NewNothingToUpdate() *BusinessError {
	return NewBusinessError(CodeNothingToUpdate, "нет полей для обновления")
}

func NewBadRequest(message string) *BusinessError {
	return NewBusinessError(CodeBadRequest, message)
}

// FromFieldError переводит ошибку проверки модели в VALIDATION_ERROR
func FromFieldError(err error) (*BusinessError, bool) {
	var fieldErr *task.FieldError
	if errors.As(err, &fieldErr) {
		busErr := NewValidationError(fieldErr.Field, fieldErr.Reason)
		busErr.Err = err
		return busErr, true
	}
	return nil, false
}
