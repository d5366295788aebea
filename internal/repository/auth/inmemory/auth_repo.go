package inmemory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"taskPlanner/internal/models/user"
	repo "taskPlanner/internal/repository"
	"time"

	"github.com/google/uuid"
)

// AuthStorage - реализация адаптера входа в памяти процесса
type AuthStorage struct {
	mtx      sync.RWMutex
	users    map[uuid.UUID]*user.User
	accounts map[user.ProviderAccount]*user.Account
	sessions map[string]*user.Session
	tokens   map[string]user.VerificationToken
	now      func() time.Time
}

func NewAuthStorage() *AuthStorage {
	return &AuthStorage{
		users:    make(map[uuid.UUID]*user.User),
		accounts: make(map[user.ProviderAccount]*user.Account),
		sessions: make(map[string]*user.Session),
		tokens:   make(map[string]user.VerificationToken),
		now:      time.Now,
	}
}

func copyUser(u *user.User) *user.User {
	c := *u
	return &c
}

func (s *AuthStorage) findByEmail(email string) *user.User {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *AuthStorage) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if existing := s.findByEmail(u.Email); existing != nil {
		if u.Name != nil {
			existing.Name = u.Name
		}
		if u.Image != nil {
			existing.Image = u.Image
		}
		return copyUser(existing), nil
	}

	created := &user.User{
		ID:        uuid.New(),
		Email:     u.Email,
		Name:      u.Name,
		Image:     u.Image,
		CreatedAt: s.now(),
	}
	s.users[created.ID] = created
	return copyUser(created), nil
}

func (s *AuthStorage) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("пользователь %s: %w", id, repo.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *AuthStorage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u := s.findByEmail(email)
	if u == nil {
		return nil, fmt.Errorf("пользователь: %w", repo.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *AuthStorage) GetUserByAccount(ctx context.Context, key user.ProviderAccount) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	a, ok := s.accounts[key]
	if !ok {
		return nil, fmt.Errorf("учётная запись %s: %w", key.Provider, repo.ErrNotFound)
	}
	u, ok := s.users[a.UserID]
	if !ok {
		return nil, fmt.Errorf("пользователь: %w", repo.ErrNotFound)
	}
	return copyUser(u), nil
}

func (s *AuthStorage) UpdateUser(ctx context.Context, u *user.User) (*user.User, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.users[u.ID]
	if !ok {
		return nil, fmt.Errorf("пользователь %s: %w", u.ID, repo.ErrNotFound)
	}
	if u.Email != "" {
		existing.Email = u.Email
	}
	if u.Name != nil {
		existing.Name = u.Name
	}
	if u.Image != nil {
		existing.Image = u.Image
	}
	return copyUser(existing), nil
}

// DeleteUser удаляет пользователя вместе с его учётными записями и сессиями
func (s *AuthStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("пользователь %s: %w", id, repo.ErrNotFound)
	}
	delete(s.users, id)
	for key, a := range s.accounts {
		if a.UserID == id {
			delete(s.accounts, key)
		}
	}
	for token, session := range s.sessions {
		if session.UserID == id {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *AuthStorage) LinkAccount(ctx context.Context, a *user.Account) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[a.UserID]; !ok {
		return fmt.Errorf("пользователь %s: %w", a.UserID, repo.ErrNotFound)
	}
	key := user.ProviderAccount{Provider: a.Provider, ProviderAccountID: a.ProviderAccountID}
	if _, exists := s.accounts[key]; exists {
		return nil
	}
	c := *a
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.accounts[key] = &c
	return nil
}

func (s *AuthStorage) UnlinkAccount(ctx context.Context, key user.ProviderAccount) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.accounts[key]; !ok {
		return fmt.Errorf("учётная запись %s: %w", key.Provider, repo.ErrNotFound)
	}
	delete(s.accounts, key)
	return nil
}

func (s *AuthStorage) CreateSession(ctx context.Context, session *user.Session) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return fmt.Errorf("пользователь %s: %w", session.UserID, repo.ErrNotFound)
	}
	if _, exists := s.sessions[session.SessionToken]; exists {
		return fmt.Errorf("сессия с таким токеном уже существует")
	}
	session.ID = uuid.New()
	c := *session
	s.sessions[c.SessionToken] = &c
	return nil
}

func (s *AuthStorage) GetSessionAndUser(ctx context.Context, token string) (*user.SessionAndUser, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	session, ok := s.sessions[token]
	if !ok || !session.Expires.After(s.now()) {
		return nil, fmt.Errorf("сессия: %w", repo.ErrNotFound)
	}
	u, ok := s.users[session.UserID]
	if !ok {
		return nil, fmt.Errorf("сессия: %w", repo.ErrNotFound)
	}
	return &user.SessionAndUser{Session: *session, User: *u}, nil
}

func (s *AuthStorage) UpdateSession(ctx context.Context, token string, expires time.Time) (*user.Session, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, fmt.Errorf("сессия: %w", repo.ErrNotFound)
	}
	session.Expires = expires
	c := *session
	return &c, nil
}

func (s *AuthStorage) DeleteSession(ctx context.Context, token string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *AuthStorage) CreateVerificationToken(ctx context.Context, vt user.VerificationToken) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, exists := s.tokens[vt.Token]; exists {
		return fmt.Errorf("токен подтверждения уже существует")
	}
	s.tokens[vt.Token] = vt
	return nil
}

func (s *AuthStorage) UseVerificationToken(ctx context.Context, identifier, token string) (*user.VerificationToken, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	vt, ok := s.tokens[token]
	if !ok || vt.Identifier != identifier {
		return nil, fmt.Errorf("токен подтверждения: %w", repo.ErrNotFound)
	}
	delete(s.tokens, token)
	return &vt, nil
}

func (s *AuthStorage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var n int64
	for token, session := range s.sessions {
		if !session.Expires.After(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *AuthStorage) DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var n int64
	for token, vt := range s.tokens {
		if !vt.Expires.After(now) {
			delete(s.tokens, token)
			n++
		}
	}
	return n, nil
}
