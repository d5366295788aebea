package postgres

import (
	"context"
	"errors"
	"fmt"
	"taskPlanner/internal/database"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/user"
	repo "taskPlanner/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = `id, email, name, image, created_at`

// Storage хранит пользователей, учётные записи провайдера, сессии и токены подтверждения
type Storage struct {
	pool      *pgxpool.Pool
	slowQuery time.Duration
}

func New(pool *pgxpool.Pool, slowQuery time.Duration) *Storage {
	return &Storage{pool: pool, slowQuery: slowQuery}
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Storage) queryUser(ctx context.Context, op, query string, args ...any) (*user.User, error) {
	start := time.Now()
	defer database.SlowQuery(op, start, s.slowQuery)

	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("пользователь: %w", repo.ErrNotFound)
		}
		logger.Error("Repository: Ошибка чтения пользователя", err,
			zap.String("operation", op),
			zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// CreateUser добавляет пользователя; при совпадении email обновляет имя и аватар
func (s *Storage) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	return s.queryUser(ctx, "create_user",
		`INSERT INTO users (email, name, image)
				VALUES ($1, $2, $3)
				ON CONFLICT (email) DO UPDATE
				SET name = COALESCE(EXCLUDED.name, users.name),
					image = COALESCE(EXCLUDED.image, users.image)
				RETURNING `+userColumns,
		u.Email, u.Name, u.Image)
}

func (s *Storage) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.queryUser(ctx, "get_user",
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.queryUser(ctx, "get_user_by_email",
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Storage) GetUserByAccount(ctx context.Context, key user.ProviderAccount) (*user.User, error) {
	return s.queryUser(ctx, "get_user_by_account",
		`SELECT u.id, u.email, u.name, u.image, u.created_at
				FROM users u
				JOIN accounts a ON a.user_id = u.id
				WHERE a.provider = $1 AND a.provider_account_id = $2`,
		key.Provider, key.ProviderAccountID)
}

// UpdateUser меняет email, имя и аватар; nil-поля сохраняют прежние значения
func (s *Storage) UpdateUser(ctx context.Context, u *user.User) (*user.User, error) {
	var email *string
	if u.Email != "" {
		email = &u.Email
	}
	return s.queryUser(ctx, "update_user",
		`UPDATE users
				SET email = COALESCE($2, email),
					name = COALESCE($3, name),
					image = COALESCE($4, image)
				WHERE id = $1
				RETURNING `+userColumns,
		u.ID, email, u.Name, u.Image)
}

func (s *Storage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return s.exec(ctx, "delete_user", true, `DELETE FROM users WHERE id = $1`, id)
}

// LinkAccount идемпотентна по паре (provider, provider_account_id)
func (s *Storage) LinkAccount(ctx context.Context, a *user.Account) error {
	return s.exec(ctx, "link_account", false,
		`INSERT INTO accounts
				(user_id, type, provider, provider_account_id, refresh_token, access_token,
				 expires_at, token_type, scope, id_token)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (provider, provider_account_id) DO NOTHING`,
		a.UserID, a.Type, a.Provider, a.ProviderAccountID, a.RefreshToken, a.AccessToken,
		a.ExpiresAt, a.TokenType, a.Scope, a.IDToken)
}

func (s *Storage) UnlinkAccount(ctx context.Context, key user.ProviderAccount) error {
	return s.exec(ctx, "unlink_account", true,
		`DELETE FROM accounts WHERE provider = $1 AND provider_account_id = $2`,
		key.Provider, key.ProviderAccountID)
}

func (s *Storage) CreateSession(ctx context.Context, session *user.Session) error {
	start := time.Now()
	defer database.SlowQuery("create_session", start, s.slowQuery)

	err := s.pool.QueryRow(ctx,
		`INSERT INTO sessions (user_id, session_token, expires)
				VALUES ($1, $2, $3)
				RETURNING id`,
		session.UserID, session.SessionToken, session.Expires).Scan(&session.ID)
	if err != nil {
		logger.Error("Repository: Не удалось создать сессию", err,
			zap.String("user_id", session.UserID.String()),
			logger.Token("session_token", session.SessionToken))
		return fmt.Errorf("создание сессии: %w", err)
	}
	return nil
}

// GetSessionAndUser возвращает только действующую сессию
func (s *Storage) GetSessionAndUser(ctx context.Context, token string) (*user.SessionAndUser, error) {
	start := time.Now()
	defer database.SlowQuery("get_session_and_user", start, s.slowQuery)

	res := &user.SessionAndUser{}
	err := s.pool.QueryRow(ctx,
		`SELECT s.id, s.user_id, s.session_token, s.expires,
					u.id, u.email, u.name, u.image, u.created_at
				FROM sessions s
				JOIN users u ON u.id = s.user_id
				WHERE s.session_token = $1 AND s.expires > NOW()`,
		token).Scan(
		&res.Session.ID, &res.Session.UserID, &res.Session.SessionToken, &res.Session.Expires,
		&res.User.ID, &res.User.Email, &res.User.Name, &res.User.Image, &res.User.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("сессия: %w", repo.ErrNotFound)
		}
		logger.Error("Repository: Ошибка чтения сессии", err, logger.Token("session_token", token))
		return nil, fmt.Errorf("чтение сессии: %w", err)
	}
	return res, nil
}

func (s *Storage) UpdateSession(ctx context.Context, token string, expires time.Time) (*user.Session, error) {
	start := time.Now()
	defer database.SlowQuery("update_session", start, s.slowQuery)

	session := &user.Session{}
	err := s.pool.QueryRow(ctx,
		`UPDATE sessions SET expires = $2
				WHERE session_token = $1
				RETURNING id, user_id, session_token, expires`,
		token, expires).Scan(&session.ID, &session.UserID, &session.SessionToken, &session.Expires)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("сессия: %w", repo.ErrNotFound)
		}
		logger.Error("Repository: Не удалось продлить сессию", err, logger.Token("session_token", token))
		return nil, fmt.Errorf("обновление сессии: %w", err)
	}
	return session, nil
}

// DeleteSession не считает ошибкой отсутствие сессии
func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.exec(ctx, "delete_session", false, `DELETE FROM sessions WHERE session_token = $1`, token)
}

func (s *Storage) CreateVerificationToken(ctx context.Context, vt user.VerificationToken) error {
	return s.exec(ctx, "create_verification_token", false,
		`INSERT INTO verification_tokens (identifier, token, expires) VALUES ($1, $2, $3)`,
		vt.Identifier, vt.Token, vt.Expires)
}

// UseVerificationToken удаляет токен и возвращает его; повторное использование невозможно
func (s *Storage) UseVerificationToken(ctx context.Context, identifier, token string) (*user.VerificationToken, error) {
	start := time.Now()
	defer database.SlowQuery("use_verification_token", start, s.slowQuery)

	vt := &user.VerificationToken{}
	err := s.pool.QueryRow(ctx,
		`DELETE FROM verification_tokens
				WHERE identifier = $1 AND token = $2
				RETURNING identifier, token, expires`,
		identifier, token).Scan(&vt.Identifier, &vt.Token, &vt.Expires)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("токен подтверждения: %w", repo.ErrNotFound)
		}
		logger.Error("Repository: Ошибка использования токена", err)
		return nil, fmt.Errorf("использование токена: %w", err)
	}
	return vt, nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return s.purge(ctx, "delete_expired_sessions", `DELETE FROM sessions WHERE expires <= $1`, now)
}

func (s *Storage) DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	return s.purge(ctx, "delete_expired_verification_tokens", `DELETE FROM verification_tokens WHERE expires <= $1`, now)
}

func (s *Storage) purge(ctx context.Context, op, query string, now time.Time) (int64, error) {
	start := time.Now()
	defer database.SlowQuery(op, start, s.slowQuery)

	tag, err := s.pool.Exec(ctx, query, now)
	if err != nil {
		logger.Error("Repository: Ошибка очистки", err, zap.String("operation", op))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}

func (s *Storage) exec(ctx context.Context, op string, mustAffect bool, query string, args ...any) error {
	start := time.Now()
	defer database.SlowQuery(op, start, s.slowQuery)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Ошибка выполнения запроса", err,
			zap.String("operation", op),
			zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("%s: %w", op, err)
	}
	if mustAffect && tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, repo.ErrNotFound)
	}
	return nil
}
