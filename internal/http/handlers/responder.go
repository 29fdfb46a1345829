package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/pickem-client/internal/api"
	"github.com/preston-bernstein/pickem-client/internal/http/middleware"
	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/reconcile"
	"github.com/preston-bernstein/pickem-client/internal/session"
	"github.com/preston-bernstein/pickem-client/internal/views"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
	Rejected  *bool  `json:"rejected,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeJSON(w, status, errorBody{Error: message, RequestID: requestID(r)}, logger)
}

func requestID(r *http.Request) string {
	if reqID := middleware.RequestIDFromContext(r.Context()); reqID != "" {
		return reqID
	}
	return r.Header.Get("X-Request-ID")
}

// writeFailure maps domain and backend errors onto HTTP statuses. Backend
// rejections keep their message verbatim.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, reconcile.ErrTeamNotInGame):
		status = http.StatusBadRequest
	case errors.Is(err, reconcile.ErrUnknownGame), errors.Is(err, views.ErrWeekNotFound):
		status = http.StatusNotFound
	case api.IsRejection(err):
		status = api.StatusCode(err)
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
	case api.IsTransport(err):
		status = http.StatusBadGateway
	}

	body := errorBody{Error: api.Message(err), RequestID: requestID(r)}
	if f, ok := reconcile.AsFailure(err); ok {
		rejected := f.Rejected()
		body.Rejected = &rejected
		body.Error = f.Message()
	}
	if status >= http.StatusInternalServerError {
		logging.Warn(loggerFromContext(r, logger), "request failed", "error", err)
	}
	writeJSON(w, status, body, logger)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
