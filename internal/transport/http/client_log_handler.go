package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
	"github.com/Blaise762/FemTechBI-MVP/internal/middleware"
)

// ClientLogHandler relays browser-side log entries into the server log
type ClientLogHandler struct {
	logger       *slog.Logger
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
}

// NewClientLogHandler creates a new client log handler
func NewClientLogHandler(validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ClientLogHandler {
	return &ClientLogHandler{
		logger:       infrastructure.WithComponent(logger, "client_log_handler"),
		validator:    validator,
		errorHandler: errorHandler,
	}
}

// LogRequest represents a client log entry
type LogRequest struct {
	Level     string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message   string                 `json:"message" validate:"required,max=2000"`
	SessionID string                 `json:"session_id,omitempty" validate:"omitempty,uuid"`
	Page      string                 `json:"page,omitempty" validate:"omitempty,page"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Handle processes POST /api/client-log
func (h *ClientLogHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	attrs := []slog.Attr{slog.String("source", "client")}
	if req.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", req.SessionID))
	}
	if req.Page != "" {
		attrs = append(attrs, slog.String("page", req.Page))
	}
	if req.Data != nil {
		attrs = append(attrs, slog.Any("data", req.Data))
	}

	var level slog.Level
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	h.logger.LogAttrs(r.Context(), level, req.Message, attrs...)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{"success": true})
}
