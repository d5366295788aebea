package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"taskPlanner/internal/client"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/models/task"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// TestClient_List тестирует параметры выборки и разбор ответа
func TestClient_List(t *testing.T) {
	id := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tasks", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("priority"))
		assert.Equal(t, "false", r.URL.Query().Get("done"))
		assert.Equal(t, "молоко", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dto.TaskListEnvelope{Tasks: []dto.TaskResponse{
			{ID: id, Title: "Купить молоко", Date: strPtr("2025-10-02"), Priority: task.PriorityUrgent},
		}})
	}))
	defer server.Close()

	p := task.PriorityUrgent
	done := false
	c := client.New(server.URL+"/", "secret")

	tasks, err := c.List(context.Background(), task.Filter{Priority: &p, Done: &done, Query: "молоко"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
	assert.Equal(t, "2025-10-02", *tasks[0].Date)
	assert.Nil(t, tasks[0].Time)
}

// TestClient_Update тестирует отправку только переданных полей
func TestClient_Update(t *testing.T) {
	id := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/tasks/"+id.String(), r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"done":true,"date":null}`, string(body))

		_ = json.NewEncoder(w).Encode(dto.TaskEnvelope{Task: dto.TaskResponse{ID: id, Title: "a", Done: true, Priority: 2}})
	}))
	defer server.Close()

	updated, err := client.New(server.URL, "t").Update(context.Background(), id, task.Patch{
		Done: task.Some(true),
		Date: task.Some[*string](nil),
	})
	require.NoError(t, err)
	assert.True(t, updated.Done)
	assert.Nil(t, updated.Date)
}

func TestClient_CreateAndDelete(t *testing.T) {
	id := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req dto.CreateTaskRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Новая", req.Title)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(dto.TaskEnvelope{Task: dto.TaskResponse{ID: id, Title: req.Title, Priority: 2}})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	c := client.New(server.URL, "t")
	created, err := c.Create(context.Background(), dto.CreateTaskRequest{Title: "Новая"})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)

	assert.NoError(t, c.Delete(context.Background(), id))
}

// TestClient_Errors тестирует разбор ответа с ошибкой
func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedText string
		unauthorized bool
		notFound     bool
	}{
		{
			name:         "error - validation message",
			status:       http.StatusUnprocessableEntity,
			body:         `{"error":"VALIDATION_ERROR","message":"название не может быть пустым","request_id":"req-1"}`,
			expectedText: "название не может быть пустым",
		},
		{
			name:         "error - unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"error":"UNAUTHORIZED","message":"требуется вход"}`,
			expectedText: "требуется вход",
			unauthorized: true,
		},
		{
			name:         "error - not found",
			status:       http.StatusNotFound,
			body:         `{"error":"NOT_FOUND","message":"задача не найдена"}`,
			expectedText: "задача не найдена",
			notFound:     true,
		},
		{
			name:         "error - body is not json",
			status:       http.StatusBadGateway,
			body:         `<html>bad gateway</html>`,
			expectedText: "запрос не выполнен: 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := client.New(server.URL, "t").List(context.Background(), task.Filter{})
			require.Error(t, err)

			var apiErr *client.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.expectedText, err.Error())
			assert.Equal(t, tt.unauthorized, client.IsUnauthorized(err))
			assert.Equal(t, tt.notFound, client.IsNotFound(err))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := client.New(server.URL, "t", client.WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := c.List(context.Background(), task.Filter{})
	require.Error(t, err)

	var apiErr *client.APIError
	assert.NotErrorAs(t, err, &apiErr)
}

func TestClient_SignInURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/auth/signin?mode=token", client.New("http://localhost:8080/", "").SignInURL())
}
