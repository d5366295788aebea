package inmemory_test

import (
	"context"
	"taskPlanner/internal/models/user"
	"taskPlanner/internal/repository"
	"taskPlanner/internal/repository/auth/inmemory"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

var google = user.ProviderAccount{Provider: "google", ProviderAccountID: "1234567890"}

// TestAuthStorage_CreateUser тестирует создание и upsert пользователя по email
func TestAuthStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s := inmemory.NewAuthStorage()

	created, err := s.CreateUser(ctx, &user.User{Email: "anna@example.com", Name: strPtr("Анна")})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	again, err := s.CreateUser(ctx, &user.User{Email: "anna@example.com", Image: strPtr("https://img")})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "Анна", *again.Name)
	assert.Equal(t, "https://img", *again.Image)

	byEmail, err := s.GetUserByEmail(ctx, "ANNA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
}

// TestAuthStorage_Accounts тестирует привязку учётной записи провайдера
func TestAuthStorage_Accounts(t *testing.T) {
	ctx := context.Background()
	s := inmemory.NewAuthStorage()

	u, err := s.CreateUser(ctx, &user.User{Email: "boris@example.com"})
	require.NoError(t, err)

	_, err = s.GetUserByAccount(ctx, google)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	account := &user.Account{UserID: u.ID, Type: "oauth", Provider: google.Provider, ProviderAccountID: google.ProviderAccountID}
	require.NoError(t, s.LinkAccount(ctx, account))
	require.NoError(t, s.LinkAccount(ctx, account), "повторная привязка не должна падать")

	found, err := s.GetUserByAccount(ctx, google)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	require.NoError(t, s.UnlinkAccount(ctx, google))
	assert.ErrorIs(t, s.UnlinkAccount(ctx, google), repository.ErrNotFound)
}

// TestAuthStorage_Sessions тестирует жизненный цикл сессии
func TestAuthStorage_Sessions(t *testing.T) {
	ctx := context.Background()
	s := inmemory.NewAuthStorage()

	u, err := s.CreateUser(ctx, &user.User{Email: "vera@example.com"})
	require.NoError(t, err)

	session := &user.Session{UserID: u.ID, SessionToken: "token-1", Expires: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateSession(ctx, session))
	assert.NotEmpty(t, session.ID)

	got, err := s.GetSessionAndUser(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.User.ID)
	assert.Equal(t, "vera@example.com", got.User.Email)

	newExpiry := time.Now().Add(48 * time.Hour)
	updated, err := s.UpdateSession(ctx, "token-1", newExpiry)
	require.NoError(t, err)
	assert.Equal(t, newExpiry, updated.Expires)

	require.NoError(t, s.DeleteSession(ctx, "token-1"))
	_, err = s.GetSessionAndUser(ctx, "token-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.DeleteSession(ctx, "token-1"), "удаление отсутствующей сессии не ошибка")
}

// TestAuthStorage_ExpiredSession проверяет, что просроченная сессия не возвращается
func TestAuthStorage_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	s := inmemory.NewAuthStorage()

	u, err := s.CreateUser(ctx, &user.User{Email: "gleb@example.com"})
	require.NoError(t, err)

	require.NoError(t, s.CreateSession(ctx, &user.Session{UserID: u.ID, SessionToken: "old", Expires: time.Now().Add(-time.Minute)}))
	require.NoError(t, s.CreateSession(ctx, &user.Session{UserID: u.ID, SessionToken: "fresh", Expires: time.Now().Add(time.Hour)}))

	_, err = s.GetSessionAndUser(ctx, "old")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := s.DeleteExpiredSessions(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetSessionAndUser(ctx, "fresh")
	assert.NoError(t, err)
}

// TestAuthStorage_VerificationTokens тестирует одноразовость токенов подтверждения
func TestAuthStorage_VerificationTokens(t *testing.T) {
	ctx := context.Background()
	s := inmemory.NewAuthStorage()

	vt := user.VerificationToken{Identifier: "dina@example.com", Token: "abc", Expires: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateVerificationToken(ctx, vt))
	require.NoError(t, s.CreateVerificationToken(ctx, user.VerificationToken{
		Identifier: "dina@example.com", Token: "stale", Expires: time.Now().Add(-time.Hour),
	}))

	_, err := s.UseVerificationToken(ctx, "other@example.com", "abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	used, err := s.UseVerificationToken(ctx, "dina@example.com", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", used.Token)

	_, err = s.UseVerificationToken(ctx, "dina@example.com", "abc")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	n, err := s.DeleteExpiredVerificationTokens(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// TestAuthStorage_DeleteUser проверяет каскадное удаление сессий
func TestAuthStorage_DeleteUser(t *testing.T) {
	ctx := context.Background()
	s := inmemory.NewAuthStorage()

	u, err := s.CreateUser(ctx, &user.User{Email: "egor@example.com"})
	require.NoError(t, err)
	require.NoError(t, s.CreateSession(ctx, &user.Session{UserID: u.ID, SessionToken: "t", Expires: time.Now().Add(time.Hour)}))

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	_, err = s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.GetSessionAndUser(ctx, "t")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), repository.ErrNotFound)
}

func TestAuthStorage_UpdateUser(t *testing.T) {
	ctx := context.Background()
	s := inmemory.NewAuthStorage()

	u, err := s.CreateUser(ctx, &user.User{Email: "zoya@example.com", Name: strPtr("Зоя")})
	require.NoError(t, err)

	updated, err := s.UpdateUser(ctx, &user.User{ID: u.ID, Image: strPtr("https://pic")})
	require.NoError(t, err)
	assert.Equal(t, "zoya@example.com", updated.Email)
	assert.Equal(t, "Зоя", *updated.Name)
	assert.Equal(t, "https://pic", *updated.Image)
}
