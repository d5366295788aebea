package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/user"
	rep "taskPlanner/internal/repository"
	"time"

	"go.uber.org/zap"
)

// SessionPolicy задаёт срок жизни сессии и порог её продления
type SessionPolicy struct {
	MaxAge    time.Duration
	UpdateAge time.Duration
}

type AuthService struct {
	repo     AuthRepository
	cache    SessionCache
	provider IdentityProvider
	policy   SessionPolicy
	now      func() time.Time
}

func NewAuthService(repo AuthRepository, cache SessionCache, provider IdentityProvider, policy SessionPolicy) *AuthService {
	return &AuthService{
		repo:     repo,
		cache:    cache,
		provider: provider,
		policy:   policy,
		now:      time.Now,
	}
}

// WithClock подменяет источник времени; используется в тестах
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) SignInURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// CompleteSignIn обменивает код провайдера на профиль, находит или создаёт
// пользователя, привязывает учётную запись и открывает новую сессию.
func (s *AuthService) CompleteSignIn(ctx context.Context, code string) (*user.SessionAndUser, error) {
	if code == "" {
		return nil, NewBadRequest("отсутствует код авторизации")
	}

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		logger.Warn("Service: Не удалось обменять код авторизации",
			zap.String("provider", s.provider.Name()),
			zap.Error(err))
		busErr := NewBadRequest("не удалось завершить вход")
		busErr.Err = err
		return nil, busErr
	}
	if identity.User.Email == "" {
		return nil, NewValidationError("email", "провайдер не вернул email")
	}

	key := user.ProviderAccount{
		Provider:          identity.Account.Provider,
		ProviderAccountID: identity.Account.ProviderAccountID,
	}

	u, err := s.repo.GetUserByAccount(ctx, key)
	switch {
	case err == nil:
		identity.User.ID = u.ID
		if u, err = s.repo.UpdateUser(ctx, &identity.User); err != nil {
			return nil, fmt.Errorf("обновление профиля: %w", err)
		}
	case errors.Is(err, rep.ErrNotFound):
		if u, err = s.repo.CreateUser(ctx, &identity.User); err != nil {
			return nil, fmt.Errorf("создание пользователя: %w", err)
		}
		logger.Info("Service: Новый вход через провайдера",
			zap.String("provider", key.Provider),
			zap.String("user_id", u.ID.String()))
	default:
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	account := identity.Account
	account.UserID = u.ID
	if err := s.repo.LinkAccount(ctx, &account); err != nil {
		return nil, fmt.Errorf("привязка учётной записи: %w", err)
	}

	session, err := s.createSession(ctx, u)
	if err != nil {
		return nil, err
	}
	return &user.SessionAndUser{Session: *session, User: *u}, nil
}

func (s *AuthService) createSession(ctx context.Context, u *user.User) (*user.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("генерация токена сессии: %w", err)
	}

	session := &user.Session{
		UserID:       u.ID,
		SessionToken: token,
		Expires:      s.now().Add(s.policy.MaxAge),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("создание сессии: %w", err)
	}

	logger.Info("Service: Сессия создана",
		zap.String("user_id", u.ID.String()),
		logger.Token("session_token", token),
		zap.Time("expires", session.Expires))
	return session, nil
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Resolve возвращает действующую сессию по токену и продлевает её,
// если до истечения осталось меньше MaxAge - UpdateAge.
func (s *AuthService) Resolve(ctx context.Context, token string) (*user.SessionAndUser, error) {
	if token == "" {
		return nil, NewUnauthorized()
	}
	now := s.now()

	current, found := s.fromCache(ctx, token)
	if found && !current.Session.Expires.After(now) {
		s.dropCache(ctx, token)
		found = false
	}

	if !found {
		var err error
		current, err = s.repo.GetSessionAndUser(ctx, token)
		if err != nil {
			if errors.Is(err, rep.ErrNotFound) {
				return nil, NewUnauthorized()
			}
			return nil, fmt.Errorf("проверка сессии: %w", err)
		}
	}

	if current.Session.Expires.Sub(now) < s.policy.MaxAge-s.policy.UpdateAge {
		updated, err := s.repo.UpdateSession(ctx, token, now.Add(s.policy.MaxAge))
		if err != nil {
			if errors.Is(err, rep.ErrNotFound) {
				s.dropCache(ctx, token)
				return nil, NewUnauthorized()
			}
			return nil, fmt.Errorf("продление сессии: %w", err)
		}
		current.Session = *updated
		found = false
	}

	if !found && s.cache != nil {
		if err := s.cache.Set(ctx, token, current); err != nil {
			logger.Warn("Service: Не удалось сохранить сессию в кэш", zap.Error(err))
		}
	}
	return current, nil
}

func (s *AuthService) fromCache(ctx context.Context, token string) (*user.SessionAndUser, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, found, err := s.cache.Get(ctx, token)
	if err != nil {
		logger.Warn("Service: Ошибка чтения кэша сессий", zap.Error(err))
		return nil, false
	}
	return cached, found
}

func (s *AuthService) dropCache(ctx context.Context, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, token); err != nil {
		logger.Warn("Service: Не удалось удалить сессию из кэша", zap.Error(err))
	}
}

// SignOut закрывает сессию; повторный выход не считается ошибкой
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return NewUnauthorized()
	}
	s.dropCache(ctx, token)
	if err := s.repo.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("удаление сессии: %w", err)
	}
	logger.Info("Service: Сессия закрыта", logger.Token("session_token", token))
	return nil
}

// PurgeExpired удаляет просроченные сессии и токены подтверждения
func (s *AuthService) PurgeExpired(ctx context.Context) (sessions, tokens int64, err error) {
	now := s.now()
	if sessions, err = s.repo.DeleteExpiredSessions(ctx, now); err != nil {
		return 0, 0, fmt.Errorf("очистка сессий: %w", err)
	}
	if tokens, err = s.repo.DeleteExpiredVerificationTokens(ctx, now); err != nil {
		return sessions, 0, fmt.Errorf("очистка токенов: %w", err)
	}
	return sessions, tokens, nil
}
