package cache

import (
	"context"
	"taskPlanner/internal/models/user"
)

// Noop используется, когда кэш выключен: всегда промах
type Noop struct{}

func (Noop) Get(context.Context, string) (*user.SessionAndUser, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, *user.SessionAndUser) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }
