package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/Blaise762/FemTechBI-MVP/internal/dataprocessing"
	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
	"github.com/Blaise762/FemTechBI-MVP/internal/middleware"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// PipelineHandler serves the stateless pipeline endpoints
type PipelineHandler struct {
	service        PipelineServiceInterface
	errorHandler   *apierrors.ErrorHandler
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(service PipelineServiceInterface, errorHandler *apierrors.ErrorHandler, logger *slog.Logger, maxUploadBytes int64) *PipelineHandler {
	return &PipelineHandler{
		service:        service,
		errorHandler:   errorHandler,
		logger:         infrastructure.WithComponent(logger, "pipeline_handler"),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the pipeline routes
func (h *PipelineHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.ContentTypeValidator("multipart/form-data")).Post("/run", h.Run)
	return r
}

// Regions handles GET /api/regions
func (h *PipelineHandler) Regions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"regions": domain.AllRegions,
		"count":   len(domain.AllRegions),
	})
}

// Run handles POST /api/pipeline/run. Both tables arrive as multipart
// files "vital" and "shortage"; "vital_format" and "shortage_format"
// override the extension guess.
func (h *PipelineHandler) Run(w http.ResponseWriter, r *http.Request) {
	reqID := chimiddleware.GetReqID(r.Context())

	limitBody(w, r, h.maxUploadBytes, 2)

	vital, vitalName, err := readFormFile(r, "vital")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	shortage, shortageName, err := readFormFile(r, "shortage")
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	vitalFormat := parseFormat(r.FormValue("vital_format"))
	if vitalFormat == "" {
		vitalFormat = dataprocessing.FormatFromFilename(vitalName)
	}
	shortageFormat := parseFormat(r.FormValue("shortage_format"))
	if shortageFormat == "" {
		shortageFormat = dataprocessing.FormatFromFilename(shortageName)
	}

	result, err := h.service.RunOnce(r.Context(), vital, vitalFormat, shortage, shortageFormat)
	if err != nil {
		h.logger.WarnContext(r.Context(), "pipeline run rejected",
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, toAPIError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "pipeline run served",
		slog.String("request_id", reqID),
		slog.String("status", string(result.Status)),
		slog.Int("scored", len(result.Scored)))
	render.JSON(w, r, result)
}
