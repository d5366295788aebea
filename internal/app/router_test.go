package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"taskPlanner/internal/app"
	"taskPlanner/internal/cache"
	"taskPlanner/internal/config"
	"taskPlanner/internal/handlers"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/models/user"
	authInmemory "taskPlanner/internal/repository/auth/inmemory"
	taskInmemory "taskPlanner/internal/repository/task/inmemory"
	"taskPlanner/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// fakeProvider выдаёт профиль по коду вида "code-<email>"
type fakeProvider struct{}

func (fakeProvider) Name() string { return "google" }

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (fakeProvider) Exchange(_ context.Context, code string) (*user.Identity, error) {
	email := code[len("code-"):]
	return &user.Identity{
		User: user.User{Email: email},
		Account: user.Account{
			Type:              "oauth",
			Provider:          "google",
			ProviderAccountID: "sub-" + email,
		},
	}, nil
}

type RouterTestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func (s *RouterTestSuite) SetupTest() {
	authService := service.NewAuthService(authInmemory.NewAuthStorage(), cache.Noop{}, fakeProvider{}, service.SessionPolicy{
		MaxAge:    30 * 24 * time.Hour,
		UpdateAge: 24 * time.Hour,
	})

	router := app.NewRouter(app.RouterDeps{
		Tasks:          service.NewTaskService(taskInmemory.NewTaskStorage()),
		Auth:           authService,
		Cookie:         handlers.CookieConfig{Name: "planner_session"},
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimit:      config.RateLimitConfig{Enabled: false},
	})

	s.server = httptest.NewServer(router)
	s.client = &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}

func (s *RouterTestSuite) TearDownTest() {
	s.server.Close()
}

// login проходит вход в режиме токена и возвращает токен сессии
func (s *RouterTestSuite) login(email string) string {
	resp, err := s.client.Get(s.server.URL + "/auth/signin?mode=token")
	s.Require().NoError(err)
	resp.Body.Close()
	s.Require().Equal(http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	s.Require().NoError(err)
	state := location.Query().Get("state")

	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/auth/callback/google?state=%s&code=code-%s",
		s.server.URL, url.QueryEscape(state), url.QueryEscape(email)), nil)
	for _, c := range resp.Cookies() {
		req.AddCookie(c)
	}
	resp, err = s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var token dto.TokenResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&token))
	s.Require().Len(token.SessionToken, 64)
	return token.SessionToken
}

func (s *RouterTestSuite) do(method, path, token string, body any) *http.Response {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	return resp
}

func decode[T any](s *RouterTestSuite, resp *http.Response) T {
	defer resp.Body.Close()
	var out T
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *RouterTestSuite) TestHealth() {
	resp := s.do(http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(resp.Header.Get("X-Request-ID"))
}

func (s *RouterTestSuite) TestTasksRequireSession() {
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodPatch, "/tasks/00000000-0000-0000-0000-000000000001"},
		{http.MethodDelete, "/tasks/00000000-0000-0000-0000-000000000001"},
		{http.MethodGet, "/auth/session"},
	} {
		resp := s.do(tc.method, tc.path, "", nil)
		resp.Body.Close()
		s.Equal(http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	resp := s.do(http.MethodGet, "/tasks", "not-a-session", nil)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

// TestTaskLifecycle проходит создание, выборку, обновление и удаление
func (s *RouterTestSuite) TestTaskLifecycle() {
	token := s.login("owner@example.com")

	session := decode[dto.SessionResponse](s, s.do(http.MethodGet, "/auth/session", token, nil))
	s.Equal("owner@example.com", session.User.Email)

	resp := s.do(http.MethodPost, "/tasks", token, map[string]any{
		"title":       "  Купить молоко  ",
		"description": "",
		"date":        "2025-10-02",
		"time":        "",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	created := decode[dto.TaskEnvelope](s, resp).Task
	s.Equal("Купить молоко", created.Title)
	s.Nil(created.Description)
	s.Nil(created.Time)
	s.Equal(2, int(created.Priority))
	s.False(created.Done)

	resp = s.do(http.MethodPost, "/tasks", token, map[string]any{"title": "   "})
	resp.Body.Close()
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	list := decode[dto.TaskListEnvelope](s, s.do(http.MethodGet, "/tasks?q="+url.QueryEscape("МОЛОКО"), token, nil))
	s.Require().Len(list.Tasks, 1)
	s.Equal(created.ID, list.Tasks[0].ID)

	resp = s.do(http.MethodPatch, "/tasks/"+created.ID.String(), token, map[string]any{"done": true, "date": ""})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	updated := decode[dto.TaskEnvelope](s, resp).Task
	s.True(updated.Done)
	s.Nil(updated.Date)
	s.True(updated.UpdatedAt.After(created.UpdatedAt))

	resp = s.do(http.MethodPatch, "/tasks/"+created.ID.String(), token, map[string]any{})
	resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = s.do(http.MethodPatch, "/tasks/not-a-uuid", token, map[string]any{"done": true})
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodDelete, "/tasks/"+created.ID.String(), token, nil)
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodDelete, "/tasks/"+created.ID.String(), token, nil)
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

// TestOwnershipIsolation проверяет, что чужая задача выглядит несуществующей
func (s *RouterTestSuite) TestOwnershipIsolation() {
	owner := s.login("owner@example.com")
	intruder := s.login("intruder@example.com")

	resp := s.do(http.MethodPost, "/tasks", owner, map[string]any{"title": "Личное"})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	created := decode[dto.TaskEnvelope](s, resp).Task

	list := decode[dto.TaskListEnvelope](s, s.do(http.MethodGet, "/tasks", intruder, nil))
	s.Empty(list.Tasks)

	resp = s.do(http.MethodPatch, "/tasks/"+created.ID.String(), intruder, map[string]any{"title": "взлом"})
	body := decode[dto.ErrorResponse](s, resp)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.NotContains(body.Message, "Личное")

	resp = s.do(http.MethodDelete, "/tasks/"+created.ID.String(), intruder, nil)
	resp.Body.Close()
	s.Equal(http.StatusNotFound, resp.StatusCode)

	list = decode[dto.TaskListEnvelope](s, s.do(http.MethodGet, "/tasks", owner, nil))
	s.Require().Len(list.Tasks, 1)
	s.Equal("Личное", list.Tasks[0].Title)
}

func (s *RouterTestSuite) TestSignOut() {
	token := s.login("owner@example.com")

	resp := s.do(http.MethodPost, "/auth/signout", token, nil)
	resp.Body.Close()
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp = s.do(http.MethodGet, "/tasks", token, nil)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RouterTestSuite) TestCORSPreflight() {
	req, _ := http.NewRequest(http.MethodOptions, s.server.URL+"/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	resp.Body.Close()

	s.Equal("http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	s.Equal("true", resp.Header.Get("Access-Control-Allow-Credentials"))
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

// TestRouter_RateLimit проверяет, что ограничение включается конфигурацией
func TestRouter_RateLimit(t *testing.T) {
	router := app.NewRouter(app.RouterDeps{
		Tasks:     service.NewTaskService(taskInmemory.NewTaskStorage()),
		Auth:      service.NewAuthService(authInmemory.NewAuthStorage(), nil, fakeProvider{}, service.SessionPolicy{MaxAge: time.Hour}),
		Cookie:    handlers.CookieConfig{Name: "planner_session"},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerMinute: 60, Burst: 1},
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
}
