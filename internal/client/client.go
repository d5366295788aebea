// Package client - REST-клиент планировщика и хранилище задач
// с оптимистичными изменениями.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/models/task"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultTimeout = 15 * time.Second

// APIError - ответ сервера с кодом ошибки. Error() возвращает текст
// сообщения сервера, его и показывают пользователю.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("запрос не выполнен: %d", e.Status)
}

func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.http = c
	}
}

// New создаёт клиент. token передаётся как Bearer; пустой токен - запросы без сессии.
func New(baseURL, token string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// SignInURL - адрес входа, после которого сервер отдаёт токен сессии в JSON
func (c *Client) SignInURL() string {
	return c.baseURL + "/auth/signin?mode=token"
}

func (c *Client) List(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	query := url.Values{}
	if filter.Priority != nil {
		query.Set("priority", strconv.Itoa(int(*filter.Priority)))
	}
	if filter.Done != nil {
		query.Set("done", strconv.FormatBool(*filter.Done))
	}
	if filter.Date != nil {
		query.Set("date", *filter.Date)
	}
	if filter.Query != "" {
		query.Set("q", filter.Query)
	}

	path := "/tasks"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var envelope dto.TaskListEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(envelope.Tasks))
	for _, t := range envelope.Tasks {
		tasks = append(tasks, t.ToTask())
	}
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, req dto.CreateTaskRequest) (*task.Task, error) {
	var envelope dto.TaskEnvelope
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Task.ToTask(), nil
}

func (c *Client) Update(ctx context.Context, id uuid.UUID, patch task.Patch) (*task.Task, error) {
	var envelope dto.TaskEnvelope
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+id.String(), patch, &envelope); err != nil {
		return nil, err
	}
	return envelope.Task.ToTask(), nil
}

func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id.String(), nil, nil)
}

func (c *Client) Session(ctx context.Context) (*dto.SessionResponse, error) {
	var session dto.SessionResponse
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/signout", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("кодирование тела запроса: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody dto.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Code = errBody.Error
			apiErr.Message = errBody.Message
			apiErr.RequestID = errBody.RequestID
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа %s %s: %w", method, path, err)
	}
	return nil
}
