package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/user"
	"taskPlanner/internal/service"

	"github.com/google/uuid"
)

const sessionKey contextKey = "session"

// SessionResolver проверяет токен сессии
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*user.SessionAndUser, error)
}

// SessionToken достаёт токен из cookie, а при её отсутствии из заголовка
// Authorization: Bearer.
func SessionToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireSession пропускает только запросы с действующей сессией
// и кладёт её в контекст.
func RequireSession(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cookieName)
			if token == "" {
				writeUnauthorized(w, r)
				return
			}

			current, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				var busErr *service.BusinessError
				if errors.As(err, &busErr) && busErr.Code == service.CodeUnauthorized {
					writeUnauthorized(w, r)
					return
				}
				logger.Error("Middleware: Ошибка проверки сессии", err, logger.Token("session_token", token))
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"error":      "INTERNAL_ERROR",
					"message":    "Внутренняя ошибка сервера",
					"request_id": GetRequestID(r.Context()),
				})
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, current)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext возвращает сессию, положенную RequireSession
func SessionFromContext(ctx context.Context) (*user.SessionAndUser, bool) {
	current, ok := ctx.Value(sessionKey).(*user.SessionAndUser)
	return current, ok && current != nil
}

// WithSession кладёт сессию в контекст
func WithSession(ctx context.Context, current *user.SessionAndUser) context.Context {
	return context.WithValue(ctx, sessionKey, current)
}

// UserID - идентификатор владельца сессии или uuid.Nil
func UserID(ctx context.Context) uuid.UUID {
	if current, ok := SessionFromContext(ctx); ok {
		return current.User.ID
	}
	return uuid.Nil
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"error":      service.CodeUnauthorized,
		"message":    "Требуется вход в систему",
		"request_id": GetRequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
