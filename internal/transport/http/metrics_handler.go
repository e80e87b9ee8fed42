package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
)

// HubStats reports event hub counters
type HubStats interface {
	GetHubMetrics() map[string]interface{}
}

// MetricsHandler serves the Prometheus scrape endpoint and hub counters
type MetricsHandler struct {
	prometheus   http.Handler
	hub          HubStats
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a new metrics handler. prometheus is nil when
// the metric exporter is disabled.
func NewMetricsHandler(prometheus http.Handler, hub HubStats, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus, hub: hub, errorHandler: errorHandler}
}

// Prometheus handles GET /metrics
func (h *MetricsHandler) Prometheus(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrServiceUnavailable)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// WebSocket handles GET /api/metrics/websocket
func (h *MetricsHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.hub.GetHubMetrics())
}
