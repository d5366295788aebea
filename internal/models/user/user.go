package user

import (
	"time"

	"github.com/google/uuid"
)

// User - профиль, полученный от провайдера входа
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      *string   `json:"name" db:"name"`
	Image     *string   `json:"image" db:"image"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Account связывает пользователя с учётной записью у провайдера
type Account struct {
	ID                uuid.UUID `db:"id"`
	UserID            uuid.UUID `db:"user_id"`
	Type              string    `db:"type"`
	Provider          string    `db:"provider"`
	ProviderAccountID string    `db:"provider_account_id"`
	RefreshToken      *string   `db:"refresh_token"`
	AccessToken       *string   `db:"access_token"`
	ExpiresAt         *int64    `db:"expires_at"`
	TokenType         *string   `db:"token_type"`
	Scope             *string   `db:"scope"`
	IDToken           *string   `db:"id_token"`
}

type Session struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	SessionToken string    `json:"-" db:"session_token"`
	Expires      time.Time `json:"expires" db:"expires"`
}

// SessionAndUser - активная сессия вместе с её владельцем
type SessionAndUser struct {
	Session Session `json:"session"`
	User    User    `json:"user"`
}

type VerificationToken struct {
	Identifier string    `db:"identifier"`
	Token      string    `db:"token"`
	Expires    time.Time `db:"expires"`
}

// ProviderAccount - ключ учётной записи у провайдера
type ProviderAccount struct {
	Provider          string
	ProviderAccountID string
}

// Identity - профиль и учётная запись, полученные от провайдера после обмена кода
type Identity struct {
	User    User
	Account Account
}
