package websocket

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBufferSize = 32
)

// ClientOptions tunes the keepalive of one connection
type ClientOptions struct {
	PingPeriod time.Duration
	PongWait   time.Duration
	TraceID    string
}

// Client is a middleman between one websocket connection and the hub. It
// only receives events for the session it subscribed to.
type Client struct {
	hub  *Hub
	conn Connection
	send chan []byte

	id          string
	sessionID   string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	pingPeriod time.Duration
	pongWait   time.Duration

	logger *slog.Logger

	messagesSent int64
}

// NewClient creates a client subscribed to sessionID
func NewClient(hub *Hub, conn Connection, sessionID string, opts ClientOptions, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if opts.PongWait <= 0 {
		opts.PongWait = 60 * time.Second
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
		slog.String("session_id", sessionID),
	)
	if opts.TraceID != "" {
		logger = logger.With(slog.String("trace_id", opts.TraceID))
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		id:          id,
		sessionID:   sessionID,
		traceID:     opts.TraceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		pingPeriod:  opts.PingPeriod,
		pongWait:    opts.PongWait,
		logger:      logger,
	}
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// ReadPump drains the connection so control frames are processed. Clients
// never send commands; any payload is ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.logger.InfoContext(c.context(), "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WarnContext(c.context(), "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(c.context(), "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// the hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent++

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// ServeWS registers a client for sessionID and starts its pumps
func ServeWS(hub *Hub, conn *websocket.Conn, sessionID string, opts ClientOptions, logger *slog.Logger) *Client {
	client := NewClient(hub, NewConnectionWrapper(conn), sessionID, opts, logger)
	hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return client
}
