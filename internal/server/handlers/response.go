package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/electrosoft/authd/pkg/api"
)

// SendJSON отправляет произвольный JSON ответ
func SendJSON(logger *slog.Logger, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// SendSuccess отправляет успешный ответ в стандартном конверте:
// {"data":{"response":...,"success_message":...},"error_message":"","is_error":false}
func SendSuccess(logger *slog.Logger, w http.ResponseWriter, payload any, successMessage string) {
	resp := api.Envelope{
		Data: &api.Data{
			Response:       payload,
			SuccessMessage: successMessage,
		},
		ErrorMessage: "",
		IsError:      false,
	}
	SendJSON(logger, w, resp, http.StatusOK)
}

// SendError отправляет ошибку как HTTP статус + {"detail":"..."}
func SendError(logger *slog.Logger, w http.ResponseWriter, detail string, statusCode int) {
	SendJSON(logger, w, api.ErrorResponse{Detail: detail}, statusCode)
}
