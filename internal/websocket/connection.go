package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Connection is the subset of *websocket.Conn the client pumps use
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// ConnectionWrapper adapts a gorilla/websocket connection to Connection
type ConnectionWrapper struct {
	*websocket.Conn
}

// NewConnectionWrapper creates a new connection wrapper
func NewConnectionWrapper(conn *websocket.Conn) Connection {
	return &ConnectionWrapper{Conn: conn}
}

// RemoteAddr returns the remote network address
func (c *ConnectionWrapper) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
