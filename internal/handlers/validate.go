package handlers

import (
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// parseFilter разбирает ?priority=&done=&date=&q=
func parseFilter(query url.Values) (task.Filter, *service.BusinessError) {
	var filter task.Filter

	if raw := strings.TrimSpace(query.Get("priority")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || !task.Priority(n).Valid() {
			return task.Filter{}, service.NewValidationError("priority", "допустимые значения: 1, 2, 3")
		}
		p := task.Priority(n)
		filter.Priority = &p
	}

	if raw := strings.TrimSpace(query.Get("done")); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return task.Filter{}, service.NewValidationError("done", "ожидается true или false")
		}
		filter.Done = &done
	}

	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		if _, err := time.Parse(task.DateLayout, raw); err != nil {
			return task.Filter{}, service.NewValidationError("date", "ожидается формат YYYY-MM-DD")
		}
		filter.Date = &raw
	}

	filter.Query = strings.TrimSpace(query.Get("q"))
	return filter, nil
}

// taskID читает {id} из пути. Нераспознанный id означает, что такой задачи нет.
func taskID(r *http.Request) (uuid.UUID, *service.BusinessError) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, service.NewNotFound("задача", idParam)
	}
	return id, nil
}
