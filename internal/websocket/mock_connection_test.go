package websocket

import (
	"errors"
	"sync"
	"time"
)

var errMockClosed = errors.New("connection closed")

// MockConnection is an in-memory Connection. ReadMessage blocks until a
// message is queued or the connection is closed.
type MockConnection struct {
	mu sync.Mutex

	WrittenMessages []MockMessage
	Closed          bool

	ReadDeadline  time.Time
	WriteDeadline time.Time
	ReadLimit     int64
	PongHandler   func(string) error

	RemoteAddress string

	incoming chan MockMessage
	done     chan struct{}
	written  chan struct{}
}

// MockMessage represents a message for mocking
type MockMessage struct {
	Type int
	Data []byte
	Err  error
}

func NewMockConnection() *MockConnection {
	return &MockConnection{
		RemoteAddress: "127.0.0.1:8080",
		incoming:      make(chan MockMessage, 16),
		done:          make(chan struct{}),
		written:       make(chan struct{}, 64),
	}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Closed {
		return errMockClosed
	}
	m.WrittenMessages = append(m.WrittenMessages, MockMessage{Type: messageType, Data: data})
	select {
	case m.written <- struct{}{}:
	default:
	}
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.incoming:
		return msg.Type, msg.Data, msg.Err
	case <-m.done:
		return 0, nil, errMockClosed
	}
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Closed {
		m.Closed = true
		close(m.done)
	}
	return nil
}

func (m *MockConnection) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadDeadline = t
	return nil
}

func (m *MockConnection) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteDeadline = t
	return nil
}

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PongHandler = h
}

func (m *MockConnection) RemoteAddr() string {
	return m.RemoteAddress
}

// AddReadMessage queues a message for ReadMessage
func (m *MockConnection) AddReadMessage(messageType int, data []byte, err error) {
	m.incoming <- MockMessage{Type: messageType, Data: data, Err: err}
}

// GetWrittenMessages returns all messages written to the connection
func (m *MockConnection) GetWrittenMessages() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]MockMessage, len(m.WrittenMessages))
	copy(result, m.WrittenMessages)
	return result
}

func (m *MockConnection) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}
