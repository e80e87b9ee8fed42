package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/internal/exporter"
	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
	"github.com/Blaise762/FemTechBI-MVP/internal/middleware"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// NavigateRequest is the body of PUT /api/sessions/{id}/page
type NavigateRequest struct {
	Page domain.Page `json:"page" validate:"required,page"`
}

// SessionHandler handles the per-session API
type SessionHandler struct {
	service        PipelineServiceInterface
	events         http.Handler
	validator      *middleware.Validator
	queryValidator *middleware.QueryParamValidator
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewSessionHandler creates a session handler. events serves the websocket
// stream and may be nil.
func NewSessionHandler(service PipelineServiceInterface, events http.Handler, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger, maxUploadBytes int64) *SessionHandler {
	logger = infrastructure.WithComponent(logger, "session_handler")
	return &SessionHandler{
		service:        service,
		events:         events,
		validator:      validator,
		queryValidator: middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler:   errorHandler,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the session routes
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateSession)

	r.Route("/{sessionID}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)

		r.Post("/form", h.SubmitForm)
		r.With(middleware.ContentTypeValidator("application/json")).Put("/page", h.Navigate)
		r.With(middleware.ContentTypeValidator("multipart/form-data")).Post("/uploads/{source}", h.Upload)
		r.With(middleware.ContentTypeValidator("application/json")).Put("/filters", h.ApplyFilters)

		r.Get("/years", h.Years)
		r.Get("/result", h.Result)
		r.Get("/export", h.Export)

		if h.events != nil {
			r.Get("/events", h.events.ServeHTTP)
		}
	})

	return r
}

func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("session_id", chi.URLParam(r, "sessionID")),
		slog.String("error", err.Error()))
	h.errorHandler.HandleError(w, r, toAPIError(err))
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.fail(w, r, "failed to create session", err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, snap)
}

// GetSession handles GET /api/sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, "failed to get session", err)
		return
	}
	render.JSON(w, r, snap)
}

// DeleteSession handles DELETE /api/sessions/{sessionID}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.fail(w, r, "failed to delete session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitForm handles POST /api/sessions/{sessionID}/form
func (h *SessionHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.SubmitForm(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, "failed to submit form", err)
		return
	}
	render.JSON(w, r, snap)
}

// Navigate handles PUT /api/sessions/{sessionID}/page
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snap, err := h.service.Navigate(r.Context(), chi.URLParam(r, "sessionID"), req.Page)
	if err != nil {
		h.fail(w, r, "failed to navigate", err)
		return
	}
	render.JSON(w, r, snap)
}

// Upload handles POST /api/sessions/{sessionID}/uploads/{source}. The file
// goes in the multipart field "file" and an optional "format" field
// overrides the extension guess.
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	source := domain.Source(chi.URLParam(r, "source"))
	if !source.IsValid() {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("source",
			fmt.Sprintf("source must be one of: %s, %s", domain.SourceVital, domain.SourceShortage)))
		return
	}

	limitBody(w, r, h.maxUploadBytes, 1)
	data, filename, err := readFormFile(r, "file")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	snap, err := h.service.Upload(r.Context(), chi.URLParam(r, "sessionID"), source, filename, parseFormat(r.FormValue("format")), data)
	if err != nil {
		h.fail(w, r, "failed to ingest upload", err)
		return
	}

	h.logger.InfoContext(r.Context(), "upload accepted",
		slog.String("request_id", chimiddleware.GetReqID(r.Context())),
		slog.String("session_id", snap.ID),
		slog.String("source", string(source)),
		slog.Int("bytes", len(data)))
	render.JSON(w, r, snap)
}

// ApplyFilters handles PUT /api/sessions/{sessionID}/filters
func (h *SessionHandler) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	var sel domain.Selection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.ValidateStruct(sel); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.ApplyFilters(r.Context(), chi.URLParam(r, "sessionID"), sel)
	if err != nil {
		h.fail(w, r, "failed to apply filters", err)
		return
	}
	render.JSON(w, r, result)
}

// Years handles GET /api/sessions/{sessionID}/years
func (h *SessionHandler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, "failed to list years", err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"years": years,
		"count": len(years),
	})
}

// Result handles GET /api/sessions/{sessionID}/result
func (h *SessionHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, "failed to get result", err)
		return
	}
	render.JSON(w, r, result)
}

// Export handles GET /api/sessions/{sessionID}/export?table=&format=. The
// file is built in memory first so a failure still gets a problem response.
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	table, ok := h.queryValidator.ValidateEnum(w, r, "table",
		[]string{string(domain.ExportUnified), string(domain.ExportScored)}, string(domain.ExportScored))
	if !ok {
		return
	}
	format, ok := h.queryValidator.ValidateEnum(w, r, "format",
		[]string{string(domain.ExportCSV), string(domain.ExportXLSX)}, string(domain.ExportCSV))
	if !ok {
		return
	}

	var buf bytes.Buffer
	err := h.service.Export(r.Context(), chi.URLParam(r, "sessionID"), domain.ExportTable(table), domain.ExportFormat(format), &buf)
	if err != nil {
		if mapped := toAPIError(err); mapped == err {
			err = apierrors.NewExportError("The export could not be generated", err).
				WithContext("table", table).
				WithContext("format", format)
		}
		h.fail(w, r, "failed to export", err)
		return
	}

	w.Header().Set("Content-Type", exporter.ContentType(domain.ExportFormat(format)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
		exporter.FileName(domain.ExportTable(table), domain.ExportFormat(format))))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write export",
			slog.String("error", err.Error()))
	}
}
