package handlers

import (
	"encoding/json"
	"net/http"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/middleware"

	"go.uber.org/zap"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func responseWithJSON(w http.ResponseWriter, code int, payload ...Payload) {
	storage := make(map[string]any, len(payload))
	for _, pl := range payload {
		storage[pl.Key] = pl.Payload
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(storage); err != nil {
		logger.Warn("HTTP: Не удалось записать ответ", zap.Error(err))
	}
}

// responseWithError пишет тело ошибки единого вида:
// {"error", "message", "details", "request_id"}
func responseWithError(w http.ResponseWriter, r *http.Request, code int, errCode, message string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	responseWithJSON(w, code,
		toPayload("error", errCode),
		toPayload("message", message),
		toPayload("details", details),
		toPayload("request_id", middleware.GetRequestID(r.Context())),
	)
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
