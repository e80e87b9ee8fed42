package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is one captured log record with its attributes flattened,
// including those bound through Logger.With
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type logStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// CaptureHandler records every log record for later assertions
type CaptureHandler struct {
	store *logStore
	attrs []slog.Attr
	t     *testing.T
}

// NewCaptureHandler creates a capture handler. With t set, each record is
// also written to the test log.
func NewCaptureHandler(t *testing.T) *CaptureHandler {
	return &CaptureHandler{store: &logStore{}, t: t}
}

// NewTestLogger creates a logger backed by a capture handler
func NewTestLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := NewCaptureHandler(t)
	return slog.New(h), h
}

// Enabled implements slog.Handler
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	h.store.records = append(h.store.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	h.store.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler. Derived handlers share one store.
func (h *CaptureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CaptureHandler{
		store: h.store,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
		t:     h.t,
	}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of every captured record
func (h *CaptureHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]LogRecord(nil), h.store.records...)
}

// RecordsAt returns the records logged at level
func (h *CaptureHandler) RecordsAt(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the first record whose message contains message
func (h *CaptureHandler) Find(message string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if strings.Contains(r.Message, message) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// AssertLogContains fails the test unless a record at level contains message
func AssertLogContains(t *testing.T, h *CaptureHandler, level slog.Level, message string) {
	t.Helper()

	records := h.RecordsAt(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}

	t.Errorf("expected log message not found at level %s: %q", level, message)
	for _, r := range records {
		t.Logf("  - %s", r.Message)
	}
}

// AssertNoErrors fails the test if anything was logged at error level
func AssertNoErrors(t *testing.T, h *CaptureHandler) {
	t.Helper()

	for _, r := range h.RecordsAt(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
}
