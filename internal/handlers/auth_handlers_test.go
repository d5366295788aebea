package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"taskPlanner/internal/handlers"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/middleware"
	"taskPlanner/internal/models/user"
	"taskPlanner/internal/service"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService - мок сервиса входа
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignInURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (m *MockAuthService) CompleteSignIn(ctx context.Context, code string) (*user.SessionAndUser, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.SessionAndUser), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

var _ handlers.AuthService = (*MockAuthService)(nil)

var testCookie = handlers.CookieConfig{Name: "planner_session"}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func signedIn() *user.SessionAndUser {
	return &user.SessionAndUser{
		Session: user.Session{
			ID:           uuid.New(),
			UserID:       testUserID,
			SessionToken: "tok-123",
			Expires:      time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		},
		User: user.User{ID: testUserID, Email: "owner@example.com"},
	}
}

// TestAuthHandler_SignIn тестирует переход к провайдеру
func TestAuthHandler_SignIn(t *testing.T) {
	t.Run("success - browser", func(t *testing.T) {
		handler := handlers.NewAuthHandler(new(MockAuthService), testCookie)

		w := httptest.NewRecorder()
		handler.SignIn(w, httptest.NewRequest(http.MethodGet, "/auth/signin", nil))

		require.Equal(t, http.StatusFound, w.Code)
		resp := w.Result()
		state := findCookie(resp, "planner_oauth_state")
		require.NotNil(t, state)
		assert.True(t, state.HttpOnly)
		assert.Contains(t, w.Header().Get("Location"), "state="+state.Value)
		assert.Nil(t, findCookie(resp, "planner_oauth_mode"))
	})

	t.Run("success - token mode", func(t *testing.T) {
		handler := handlers.NewAuthHandler(new(MockAuthService), testCookie)

		w := httptest.NewRecorder()
		handler.SignIn(w, httptest.NewRequest(http.MethodGet, "/auth/signin?mode=token", nil))

		require.Equal(t, http.StatusFound, w.Code)
		mode := findCookie(w.Result(), "planner_oauth_mode")
		require.NotNil(t, mode)
		assert.Equal(t, handlers.ModeToken, mode.Value)
	})
}

// TestAuthHandler_Callback тестирует завершение входа
func TestAuthHandler_Callback(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		cookies        []*http.Cookie
		setupMock      func(*MockAuthService)
		expectedStatus int
		check          func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:    "success - browser redirect",
			query:   "?state=s1&code=c1",
			cookies: []*http.Cookie{{Name: "planner_oauth_state", Value: "s1"}},
			setupMock: func(m *MockAuthService) {
				m.On("CompleteSignIn", mock.Anything, "c1").Return(signedIn(), nil)
			},
			expectedStatus: http.StatusFound,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, handlers.AppPath, w.Header().Get("Location"))
				session := findCookie(w.Result(), "planner_session")
				require.NotNil(t, session)
				assert.Equal(t, "tok-123", session.Value)
				assert.True(t, session.HttpOnly)
				assert.Equal(t, http.SameSiteLaxMode, session.SameSite)
				assert.Equal(t, "/", session.Path)
			},
		},
		{
			name:  "success - token mode",
			query: "?state=s1&code=c1",
			cookies: []*http.Cookie{
				{Name: "planner_oauth_state", Value: "s1"},
				{Name: "planner_oauth_mode", Value: handlers.ModeToken},
			},
			setupMock: func(m *MockAuthService) {
				m.On("CompleteSignIn", mock.Anything, "c1").Return(signedIn(), nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp dto.TokenResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "tok-123", resp.SessionToken)
				assert.True(t, resp.Expires.Equal(signedIn().Session.Expires))
			},
		},
		{
			name:           "error - state mismatch",
			query:          "?state=other&code=c1",
			cookies:        []*http.Cookie{{Name: "planner_oauth_state", Value: "s1"}},
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - no state cookie",
			query:          "?state=s1&code=c1",
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - provider denied",
			query:          "?error=access_denied&state=s1",
			cookies:        []*http.Cookie{{Name: "planner_oauth_state", Value: "s1"}},
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "error - exchange failed",
			query:   "?state=s1&code=bad",
			cookies: []*http.Cookie{{Name: "planner_oauth_state", Value: "s1"}},
			setupMock: func(m *MockAuthService) {
				m.On("CompleteSignIn", mock.Anything, "bad").
					Return(nil, service.NewBadRequest("не удалось завершить вход"))
			},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Nil(t, findCookie(w.Result(), "planner_session"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.setupMock(mockService)

			handler := handlers.NewAuthHandler(mockService, testCookie)

			req := httptest.NewRequest(http.MethodGet, "/auth/callback/google"+tt.query, nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			w := httptest.NewRecorder()

			handler.Callback(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				tt.check(t, w)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// TestAuthHandler_SignOut тестирует выход
func TestAuthHandler_SignOut(t *testing.T) {
	t.Run("success - clears cookie", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("SignOut", mock.Anything, "tok-123").Return(nil)
		handler := handlers.NewAuthHandler(mockService, testCookie)

		req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
		req.AddCookie(&http.Cookie{Name: "planner_session", Value: "tok-123"})
		w := httptest.NewRecorder()
		handler.SignOut(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		cleared := findCookie(w.Result(), "planner_session")
		require.NotNil(t, cleared)
		assert.Equal(t, "", cleared.Value)
		assert.True(t, cleared.MaxAge < 0)
		mockService.AssertExpectations(t)
	})

	t.Run("error - no token", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("SignOut", mock.Anything, "").Return(service.NewUnauthorized())
		handler := handlers.NewAuthHandler(mockService, testCookie)

		w := httptest.NewRecorder()
		handler.SignOut(w, httptest.NewRequest(http.MethodPost, "/auth/signout", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("error - storage failure", func(t *testing.T) {
		mockService := new(MockAuthService)
		mockService.On("SignOut", mock.Anything, "tok-123").Return(errors.New("db down"))
		handler := handlers.NewAuthHandler(mockService, testCookie)

		req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
		req.Header.Set("Authorization", "Bearer tok-123")
		w := httptest.NewRecorder()
		handler.SignOut(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// TestAuthHandler_Session тестирует выдачу текущего пользователя
func TestAuthHandler_Session(t *testing.T) {
	handler := handlers.NewAuthHandler(new(MockAuthService), testCookie)

	t.Run("success - current user", func(t *testing.T) {
		current := signedIn()
		req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
		req = req.WithContext(middleware.WithSession(req.Context(), current))
		w := httptest.NewRecorder()

		handler.Session(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.SessionResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, testUserID, resp.User.ID)
		assert.Equal(t, "owner@example.com", resp.User.Email)
		assert.NotContains(t, w.Body.String(), "tok-123")
	})

	t.Run("error - no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Session(w, httptest.NewRequest(http.MethodGet, "/auth/session", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
