package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	gorillaws "github.com/gorilla/websocket"

	"github.com/Blaise762/FemTechBI-MVP/internal/config"
	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
	ws "github.com/Blaise762/FemTechBI-MVP/internal/websocket"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// SessionLookup resolves a session before its stream is opened
type SessionLookup interface {
	GetSession(ctx context.Context, sessionID string) (domain.SessionSnapshot, error)
}

// EventsHandler upgrades GET /api/sessions/{sessionID}/events to a
// websocket that receives the session's snapshots
type EventsHandler struct {
	hub          *ws.Hub
	sessions     SessionLookup
	upgrader     gorillaws.Upgrader
	opts         ws.ClientOptions
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewEventsHandler creates the websocket handler. Origins are checked
// against allowedOrigins; "*" admits any origin.
func NewEventsHandler(hub *ws.Hub, sessions SessionLookup, cfg config.WebSocketConfig, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *EventsHandler {
	h := &EventsHandler{
		hub:      hub,
		sessions: sessions,
		opts: ws.ClientOptions{
			PingPeriod: cfg.PingPeriod,
			PongWait:   cfg.PongWait,
		},
		errorHandler: errorHandler,
		logger:       infrastructure.WithComponent(logger, "events_handler"),
	}
	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker allows same-origin requests, requests without an Origin
// header and any origin in allowed
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
}

// ServeHTTP handles the websocket upgrade
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	reqID := chimiddleware.GetReqID(r.Context())

	snap, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written an HTTP error
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("request_id", reqID),
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return
	}

	opts := h.opts
	opts.TraceID = reqID
	ws.ServeWS(h.hub, conn, sessionID, opts, h.logger)

	// current state first, later transitions follow as they happen
	h.hub.PublishSession(r.Context(), sessionID, snap)

	h.logger.InfoContext(r.Context(), "WebSocket stream opened",
		slog.String("request_id", reqID),
		slog.String("session_id", sessionID),
		slog.String("remote_addr", r.RemoteAddr))
}
