package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(includeStack bool) *ErrorHandler {
	return NewErrorHandler(slog.New(slog.NewJSONHandler(io.Discard, nil)), includeStack)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorToProblem(t *testing.T) {
	h := newTestHandler(false)
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/abc/result", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"wrapped cancel", fmt.Errorf("run: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout},
		{"session not found", ErrSessionNotFound, http.StatusNotFound, TypeSessionNotFound},
		{"form required", ErrFormRequired, http.StatusForbidden, TypeFormRequired},
		{"payload too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, TypePayloadTooLarge},
		{"validation", ErrValidation("years", "must be positive"), http.StatusBadRequest, TypeValidation},
		{"wrapped app error", fmt.Errorf("upload: %w", NewParsingError("vital upload could not be read", errors.New("bad zip"))), http.StatusUnprocessableEntity, TypeUnreadableTable},
		{"session limit", ErrSessionLimit, http.StatusServiceUnavailable, TypeServiceDown},
		{"parsing app error", NewParsingError("spreadsheet", errors.New("no sheets")), http.StatusUnprocessableEntity, TypeUnreadableTable},
		{"export app error", NewExportError("xlsx", nil), http.StatusInternalServerError, TypeExportFailed},
		{"max bytes", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, TypePayloadTooLarge},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problem := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, problem.Status)
			assert.Equal(t, tt.wantType, problem.Type)
			assert.Equal(t, "/api/sessions/abc/result", problem.Instance)
		})
	}
}

func TestHandleErrorRendersProblemJSON(t *testing.T) {
	h := newTestHandler(false)
	req := httptest.NewRequest(http.MethodPut, "/api/sessions/abc/filters", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewValidationErrors([]ValidationError{{Field: "regions[0]", Message: "oneof"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	body := decodeProblem(t, rec)
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
	assert.Contains(t, body, "trace_id")
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	assert.Len(t, errs, 1)
	assert.NotContains(t, body, "stack")
}

func TestHandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(false).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, rec.Body.Len())
}

func TestAppErrorContextBecomesExtension(t *testing.T) {
	h := newTestHandler(false)
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/abc/uploads/vital", nil)

	err := NewParsingError("cannot read upload", errors.New("zip: not a valid zip file")).
		WithContext("source", "vital")
	problem := h.ErrorToProblem(err, req)

	assert.Equal(t, "vital", problem.Extensions["source"])
	assert.Contains(t, problem.Detail, "zip")
}

func TestHandlePanic(t *testing.T) {
	h := newTestHandler(true)

	rec := httptest.NewRecorder()
	h.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/api/pipeline/run", nil), "unexpected nil table")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "unexpected nil table", body["panic"])
	assert.Contains(t, body, "stack")
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := newTestHandler(false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/regions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, decodeProblem(t, rec)["detail"], "PATCH")
}
