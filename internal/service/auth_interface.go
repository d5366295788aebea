package service

import (
	"context"
	"taskPlanner/internal/models/user"
	"time"

	"github.com/google/uuid"
)

// AuthRepository - адаптер входа: пользователи, учётные записи провайдера,
// сессии и токены подтверждения
type AuthRepository interface {
	CreateUser(context.Context, *user.User) (*user.User, error)
	GetUser(context.Context, uuid.UUID) (*user.User, error)
	GetUserByEmail(context.Context, string) (*user.User, error)
	GetUserByAccount(context.Context, user.ProviderAccount) (*user.User, error)
	UpdateUser(context.Context, *user.User) (*user.User, error)
	DeleteUser(context.Context, uuid.UUID) error

	LinkAccount(context.Context, *user.Account) error
	UnlinkAccount(context.Context, user.ProviderAccount) error

	CreateSession(context.Context, *user.Session) error
	GetSessionAndUser(context.Context, string) (*user.SessionAndUser, error)
	UpdateSession(context.Context, string, time.Time) (*user.Session, error)
	DeleteSession(context.Context, string) error

	CreateVerificationToken(context.Context, user.VerificationToken) error
	UseVerificationToken(context.Context, string, string) (*user.VerificationToken, error)

	DeleteExpiredSessions(context.Context, time.Time) (int64, error)
	DeleteExpiredVerificationTokens(context.Context, time.Time) (int64, error)
}

// SessionCache хранит уже проверенные сессии. Промах возвращает found=false без ошибки.
type SessionCache interface {
	Get(ctx context.Context, token string) (*user.SessionAndUser, bool, error)
	Set(ctx context.Context, token string, session *user.SessionAndUser) error
	Delete(ctx context.Context, token string) error
}

// IdentityProvider - внешний провайдер входа
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*user.Identity, error)
}
