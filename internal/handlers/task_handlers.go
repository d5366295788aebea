package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/middleware"
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/service"
	"time"

	"go.uber.org/zap"
)

const ServiceName = "task-planner"

const maxBodyBytes = 1 << 20

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	filter, busErr := parseFilter(r.URL.Query())
	if busErr != nil {
		logger.Warn("HTTP: Неверный фильтр",
			zap.Any("details", busErr.Details),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, r, http.StatusBadRequest, busErr.Code, busErr.Message, busErr.Details)
		return
	}

	tasks, err := s.TaskService.List(r.Context(), middleware.UserID(r.Context()), filter)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logger.Info("HTTP: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (s *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, r, http.StatusUnsupportedMediaType, service.CodeBadRequest,
			"Content-Type должен быть application/json", nil)
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, r, http.StatusBadRequest, service.CodeBadRequest, "неверное тело запроса", nil)
		return
	}

	created, err := s.TaskService.Create(r.Context(), middleware.UserID(r.Context()), request.ToDraft())
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

func (s *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, busErr := taskID(r)
	if busErr != nil {
		handleError(w, r, busErr, "update_task")
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, r, http.StatusUnsupportedMediaType, service.CodeBadRequest,
			"Content-Type должен быть application/json", nil)
		return
	}

	var patch task.Patch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&patch); err != nil {
		var fieldErr *task.FieldError
		if errors.As(err, &fieldErr) {
			handleError(w, r, service.NewValidationError(fieldErr.Field, fieldErr.Reason), "update_task")
			return
		}

		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, r, http.StatusBadRequest, service.CodeBadRequest, "неверно переданы параметры обновления", nil)
		return
	}

	updated, err := s.TaskService.Update(r.Context(), middleware.UserID(r.Context()), id, patch)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, busErr := taskID(r)
	if busErr != nil {
		handleError(w, r, busErr, "delete_task")
		return
	}

	if err := s.TaskService.Delete(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)))

	noContent(w)
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", ServiceName))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", ServiceName),
		toPayload("time", time.Now().UTC().Format(time.RFC3339)))
}
