package repository

import "errors"

var ErrNotFound = errors.New("запись не найдена")

var ErrEmptyUpdate = errors.New("нет полей для обновления")
