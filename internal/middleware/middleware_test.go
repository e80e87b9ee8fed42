package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/Blaise762/FemTechBI-MVP/internal/errors"
	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRequestID(t *testing.T) {
	var seen, chiSeen, traceSeen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetReqID(r.Context())
		chiSeen = chimw.GetReqID(r.Context())
		traceSeen = infrastructure.GetTraceID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, seen, chiSeen)
		assert.Equal(t, seen, traceSeen)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-1")
		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, "upstream-1", seen)
	})
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sessions/x/result", nil))

	out := buf.String()
	assert.Contains(t, out, `"msg":"request started"`)
	assert.Contains(t, out, `"level":"WARN","msg":"request completed"`)
	assert.Contains(t, out, `"status":403`)
}

func TestRecoverer(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(discardLogger(), false)
	h := RequestID(Recoverer(errorHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("stage exploded")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeInternal, body["type"])
	assert.Equal(t, "req-42", body["trace_id"])
	assert.NotContains(t, body, "panic", "panic text stays out of responses unless stacks are enabled")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2, discardLogger())
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/regions", nil))
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), apierrors.TypeRateLimit)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var deadlineSet bool
	h := Timeout(50*time.Millisecond, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, deadlineSet = r.Context().Deadline()
		<-r.Context().Done()
		assert.ErrorIs(t, r.Context().Err(), context.DeadlineExceeded)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, deadlineSet)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := CORS(CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})(next)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{"allowed origin", http.MethodGet, "http://localhost:3000", http.StatusTeapot, "http://localhost:3000"},
		{"foreign origin", http.MethodGet, "http://evil.example", http.StatusTeapot, ""},
		{"preflight", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/regions", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x/events", nil)
	req.Header.Set("Upgrade", "websocket")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("X-Frame-Options"))
}

func TestOTelMiddlewareRecordsRequests(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		TraceExporter:  "none",
		MetricExporter: "prometheus",
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	mw, err := NewOTelMiddleware(providers, metrics)
	require.NoError(t, err)

	h := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	scrape := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.True(t, strings.Contains(body, `status_code="201"`))

	_, err = NewOTelMiddleware(providers, nil)
	assert.Error(t, err)
}
