package handlers

import (
	"net/http"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/middleware"
	"taskPlanner/internal/service"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stateCookie = "planner_oauth_state"
const modeCookie = "planner_oauth_mode"
const stateTTL = 10 * time.Minute

// ModeToken - вход для терминального клиента: вместо перехода в /app
// колбэк отдаёт токен сессии в JSON.
const ModeToken = "token"

const AppPath = "/app"

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	AuthService AuthService
	Cookie      CookieConfig
}

func NewAuthHandler(authService AuthService, cookie CookieConfig) AuthHandler {
	return AuthHandler{
		AuthService: authService,
		Cookie:      cookie,
	}
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	h.setShortCookie(w, stateCookie, state)

	if r.URL.Query().Get("mode") == ModeToken {
		h.setShortCookie(w, modeCookie, ModeToken)
	}

	logger.Info("HTTP: Переход к провайдеру входа", zap.String("client_ip", r.RemoteAddr))
	http.Redirect(w, r, h.AuthService.SignInURL(state), http.StatusFound)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		logger.Warn("HTTP: Провайдер отклонил вход", zap.String("error", providerErr))
		responseWithError(w, r, http.StatusBadRequest, service.CodeBadRequest, "вход отменён", nil)
		return
	}

	expected, err := r.Cookie(stateCookie)
	if err != nil || expected.Value == "" || expected.Value != query.Get("state") {
		logger.Warn("HTTP: Неверный state при входе", zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, r, http.StatusBadRequest, service.CodeBadRequest, "неверный параметр state", nil)
		return
	}

	tokenMode := false
	if c, err := r.Cookie(modeCookie); err == nil && c.Value == ModeToken {
		tokenMode = true
	}
	h.clearCookie(w, stateCookie)
	h.clearCookie(w, modeCookie)

	current, err := h.AuthService.CompleteSignIn(r.Context(), query.Get("code"))
	if err != nil {
		handleError(w, r, err, "sign_in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    current.Session.SessionToken,
		Path:     "/",
		Expires:  current.Session.Expires,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("HTTP: Вход выполнен",
		zap.String("user_id", current.User.ID.String()),
		zap.Bool("token_mode", tokenMode))

	if tokenMode {
		responseWithJSON(w, http.StatusOK,
			toPayload("session_token", current.Session.SessionToken),
			toPayload("expires", current.Session.Expires))
		return
	}
	http.Redirect(w, r, AppPath, http.StatusFound)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r, h.Cookie.Name)
	h.clearCookie(w, h.Cookie.Name)

	if err := h.AuthService.SignOut(r.Context(), token); err != nil {
		handleError(w, r, err, "sign_out")
		return
	}
	noContent(w)
}

// Session отдаёт текущего пользователя; маршрут закрыт RequireSession
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	current, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		handleError(w, r, service.NewUnauthorized(), "session")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("user", dto.FromUser(current.User)),
		toPayload("expires", current.Session.Expires))
}

func (h *AuthHandler) setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	path := "/auth"
	if name == h.Cookie.Name {
		path = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
