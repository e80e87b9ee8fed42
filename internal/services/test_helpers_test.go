package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
)

// MockSessionPublisher is a mock for the SessionPublisher interface
type MockSessionPublisher struct {
	mock.Mock
}

func (m *MockSessionPublisher) PublishSession(ctx context.Context, sessionID string, snapshot interface{}) {
	m.Called(ctx, sessionID, snapshot)
}

func (m *MockSessionPublisher) CloseSession(ctx context.Context, sessionID string) {
	m.Called(ctx, sessionID)
}

type fixedCounter int

func (c fixedCounter) ClientCount() int  { return int(c) }
func (c fixedCounter) SessionCount() int { return int(c) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
