package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/internal/middleware"
	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// MockPipelineService is a mock implementation of PipelineServiceInterface
type MockPipelineService struct {
	mock.Mock
}

func (m *MockPipelineService) CreateSession(ctx context.Context) (domain.SessionSnapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.SessionSnapshot), args.Error(1)
}

func (m *MockPipelineService) GetSession(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.SessionSnapshot), args.Error(1)
}

func (m *MockPipelineService) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockPipelineService) SubmitForm(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.SessionSnapshot), args.Error(1)
}

func (m *MockPipelineService) Navigate(ctx context.Context, sessionID string, page domain.Page) (domain.SessionSnapshot, error) {
	args := m.Called(ctx, sessionID, page)
	return args.Get(0).(domain.SessionSnapshot), args.Error(1)
}

func (m *MockPipelineService) Upload(ctx context.Context, sessionID string, source domain.Source, filename string, format domain.Format, data []byte) (domain.SessionSnapshot, error) {
	args := m.Called(ctx, sessionID, source, filename, format, data)
	return args.Get(0).(domain.SessionSnapshot), args.Error(1)
}

func (m *MockPipelineService) ApplyFilters(ctx context.Context, sessionID string, sel domain.Selection) (domain.FilteredResult, error) {
	args := m.Called(ctx, sessionID, sel)
	return args.Get(0).(domain.FilteredResult), args.Error(1)
}

func (m *MockPipelineService) Years(ctx context.Context, sessionID string) ([]int, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockPipelineService) Result(ctx context.Context, sessionID string) (domain.FilteredResult, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(domain.FilteredResult), args.Error(1)
}

func (m *MockPipelineService) Export(ctx context.Context, sessionID string, table domain.ExportTable, format domain.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, sessionID, table, format, w)
	return args.Error(0)
}

func (m *MockPipelineService) RunOnce(ctx context.Context, vital []byte, vitalFormat domain.Format, shortage []byte, shortageFormat domain.Format) (domain.PipelineResult, error) {
	args := m.Called(ctx, vital, vitalFormat, shortage, shortageFormat)
	return args.Get(0).(domain.PipelineResult), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

// newTestRouter mounts the session and pipeline routes the way the app does
func newTestRouter(svc PipelineServiceInterface, events http.Handler) http.Handler {
	logger := testLogger()
	eh := testErrorHandler()
	validator := middleware.NewValidator(logger)

	sessions := NewSessionHandler(svc, events, validator, eh, logger, 1<<20)
	pipeline := NewPipelineHandler(svc, eh, logger, 1<<20)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.NotFound(eh.NotFound)
	r.Get("/api/regions", pipeline.Regions)
	r.Mount("/api/pipeline", pipeline.Routes())
	r.Mount("/api/sessions", sessions.Routes())
	return r
}

type formFile struct {
	field, filename string
	data            []byte
}

// multipartRequest builds a multipart request with files and plain fields
func multipartRequest(t *testing.T, method, target string, files []formFile, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
