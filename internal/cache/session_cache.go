package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"taskPlanner/internal/config"
	"taskPlanner/internal/models/user"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "planner:session:"

// SessionCache хранит проверенные сессии в Redis. Ключ - SHA-256 от токена,
// сам токен в Redis не попадает. TTL не превышает оставшийся срок сессии.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{client: client, ttl: ttl, now: time.Now}
}

// NewClient создаёт клиента Redis и проверяет соединение
func NewClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("подключение к redis: %w", err)
	}
	return rdb, nil
}

func key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// cachedSession - запись кэша без токена; токен восстанавливается из запроса
type cachedSession struct {
	Session struct {
		ID      uuid.UUID `json:"id"`
		UserID  uuid.UUID `json:"user_id"`
		Expires time.Time `json:"expires"`
	} `json:"session"`
	User user.User `json:"user"`
}

func (c *SessionCache) Get(ctx context.Context, token string) (*user.SessionAndUser, bool, error) {
	data, err := c.client.Get(ctx, key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("чтение из кэша: %w", err)
	}

	var cached cachedSession
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false, fmt.Errorf("разбор записи кэша: %w", err)
	}

	return &user.SessionAndUser{
		Session: user.Session{
			ID:           cached.Session.ID,
			UserID:       cached.Session.UserID,
			SessionToken: token,
			Expires:      cached.Session.Expires,
		},
		User: cached.User,
	}, true, nil
}

func (c *SessionCache) Set(ctx context.Context, token string, s *user.SessionAndUser) error {
	ttl := c.ttl
	if remaining := s.Session.Expires.Sub(c.now()); remaining < ttl {
		ttl = remaining
	}
	if ttl <= 0 {
		return nil
	}

	var cached cachedSession
	cached.Session.ID = s.Session.ID
	cached.Session.UserID = s.Session.UserID
	cached.Session.Expires = s.Session.Expires
	cached.User = s.User

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("сериализация сессии: %w", err)
	}
	if err := c.client.Set(ctx, key(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("запись в кэш: %w", err)
	}
	return nil
}

func (c *SessionCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, key(token)).Err(); err != nil {
		return fmt.Errorf("удаление из кэша: %w", err)
	}
	return nil
}
