package handlers

import (
	"errors"
	"net/http"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/middleware"
	"taskPlanner/internal/service"

	"go.uber.org/zap"
)

const codeInternal = "INTERNAL_ERROR"

// handleError отвечает на ошибку сервиса. Бизнес-ошибки уходят клиенту
// как есть, остальные скрываются за общим сообщением.
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	var busErr *service.BusinessError
	if errors.As(err, &busErr) {
		statusCode := mapBusinessErrorToHTTP(busErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("operation", operation),
			zap.String("error_code", busErr.Code),
			zap.Int("http_status", statusCode))

		responseWithError(w, r, statusCode, busErr.Code, busErr.Message, busErr.Details)
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("operation", operation))

	responseWithError(w, r, http.StatusInternalServerError, codeInternal, "внутренняя ошибка сервера", nil)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	case service.CodeValidation:
		return http.StatusUnprocessableEntity
	case service.CodeNothingToUpdate, service.CodeBadRequest:
		return http.StatusBadRequest
	case service.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
