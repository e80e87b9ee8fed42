package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Blaise762/FemTechBI-MVP/internal/infrastructure"
)

// Message types sent to clients
const (
	TypeConnection      = "connection"
	TypeSessionSnapshot = "session:snapshot"
	TypeSessionClosed   = "session:closed"
)

// envelope is the JSON frame every client receives
type envelope struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type outbound struct {
	sessionID string
	payload   []byte
}

// Hub fans session events out to the clients subscribed to that session
type Hub struct {
	// clients grouped by session id
	clients map[string]map[*Client]struct{}

	publish    chan outbound
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics

	messagesSent    int64
	messagesDropped int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub instance. metrics may be nil.
func NewHub(logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		publish:    make(chan outbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
		metrics:    metrics,
		quit:       make(chan struct{}),
	}
}

// Start starts the hub loop in its own goroutine
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.publish:
			h.deliver(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		close(client.send)
		return
	}
	set, ok := h.clients[client.sessionID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.sessionID] = set
	}
	set[client] = struct{}{}
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.RecordWebSocketClients(ctx, 1)
	h.logger.InfoContext(ctx, "Client registered",
		slog.String("client_id", client.id),
		slog.String("session_id", client.sessionID),
		slog.String("remote_addr", client.remoteAddr))

	if payload, err := encode(TypeConnection, client.sessionID, map[string]string{"client_id": client.id}); err == nil {
		select {
		case client.send <- payload:
		default:
			h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
				slog.String("client_id", client.id))
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	set, ok := h.clients[client.sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := set[client]; !ok {
		h.mu.Unlock()
		return
	}
	h.dropLocked(client)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.RecordWebSocketClients(ctx, -1)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// dropLocked removes a client and closes its send channel. h.mu must be held.
func (h *Hub) dropLocked(client *Client) {
	set := h.clients[client.sessionID]
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.sessionID)
	}
	close(client.send)
}

func (h *Hub) deliver(msg outbound) {
	var dropped []*Client

	// sends are non-blocking so the lock is held across the fan-out
	h.mu.Lock()
	for client := range h.clients[msg.sessionID] {
		select {
		case client.send <- msg.payload:
			h.messagesSent++
		default:
			h.dropLocked(client)
			h.messagesDropped++
			dropped = append(dropped, client)
		}
	}
	h.mu.Unlock()

	for _, client := range dropped {
		h.metrics.RecordWebSocketClients(client.context(), -1)
		h.logger.Warn("Client send buffer full, disconnecting",
			slog.String("client_id", client.id),
			slog.String("session_id", msg.sessionID))
	}
}

func encode(msgType, sessionID string, data interface{}) ([]byte, error) {
	return json.Marshal(envelope{
		Type:      msgType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// PublishSession queues a snapshot for every client watching sessionID. It
// never blocks; when the queue is full the event is dropped and logged.
func (h *Hub) PublishSession(ctx context.Context, sessionID string, snapshot interface{}) {
	h.enqueue(ctx, TypeSessionSnapshot, sessionID, snapshot)
}

// CloseSession tells watchers that the session is gone
func (h *Hub) CloseSession(ctx context.Context, sessionID string) {
	h.enqueue(ctx, TypeSessionClosed, sessionID, nil)
}

func (h *Hub) enqueue(ctx context.Context, msgType, sessionID string, data interface{}) {
	payload, err := encode(msgType, sessionID, data)
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", msgType))
		return
	}

	select {
	case h.publish <- outbound{sessionID: sessionID, payload: payload}:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.logger.WarnContext(ctx, "Publish queue full, dropping event",
			slog.String("session_id", sessionID),
			slog.String("message_type", msgType))
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Stop gracefully stops the hub and disconnects every client
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)

	for _, set := range h.clients {
		for client := range set {
			close(client.send)
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
}

// GetHubMetrics returns current hub counters
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	active := 0
	for _, set := range h.clients {
		active += len(set)
	}
	return map[string]interface{}{
		"active_clients":   active,
		"watched_sessions": len(h.clients),
		"messages_sent":    h.messagesSent,
		"messages_dropped": h.messagesDropped,
	}
}
