package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, hub *Hub, sessionID string) (*Client, *MockConnection) {
	t.Helper()
	conn := NewMockConnection()
	client := NewClient(hub, conn, sessionID, ClientOptions{PongWait: time.Minute, TraceID: "trace-" + sessionID}, nil)
	hub.Register(client)
	go client.WritePump()
	return client, conn
}

func textEnvelopes(t *testing.T, conn *MockConnection) []envelope {
	t.Helper()
	var out []envelope
	for _, msg := range conn.GetWrittenMessages() {
		if msg.Type != websocket.TextMessage {
			continue
		}
		var env envelope
		require.NoError(t, json.Unmarshal(msg.Data, &env))
		out = append(out, env)
	}
	return out
}

func hasType(envs []envelope, msgType string) bool {
	for _, env := range envs {
		if env.Type == msgType {
			return true
		}
	}
	return false
}

func TestHubPublishReachesOnlyMatchingSession(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	defer hub.Stop()

	_, connA := newTestClient(t, hub, "session-a")
	_, connB := newTestClient(t, hub, "session-b")

	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.PublishSession(context.Background(), "session-a", map[string]string{"status": "ok"})

	require.Eventually(t, func() bool {
		return hasType(textEnvelopes(t, connA), TypeSessionSnapshot)
	}, time.Second, 5*time.Millisecond)

	envsA := textEnvelopes(t, connA)
	assert.Equal(t, TypeConnection, envsA[0].Type)
	for _, env := range envsA {
		assert.Equal(t, "session-a", env.SessionID)
	}

	// give the hub a moment to misroute if it were going to
	time.Sleep(20 * time.Millisecond)
	assert.False(t, hasType(textEnvelopes(t, connB), TypeSessionSnapshot))

	metrics := hub.GetHubMetrics()
	assert.Equal(t, 2, metrics["active_clients"])
	assert.Equal(t, 2, metrics["watched_sessions"])
}

func TestHubCloseSession(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	defer hub.Stop()

	_, conn := newTestClient(t, hub, "s1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.CloseSession(context.Background(), "s1")

	require.Eventually(t, func() bool {
		return hasType(textEnvelopes(t, conn), TypeSessionClosed)
	}, time.Second, 5*time.Millisecond)
}

func TestClientReadPumpUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()
	defer hub.Stop()

	client, conn := newTestClient(t, hub, "s1")
	go client.ReadPump()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.AddReadMessage(websocket.TextMessage, []byte("ignored"), nil)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(maxMessageSize), conn.ReadLimit)
}

func TestHubStopDisconnectsClients(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.Start()

	_, conn := newTestClient(t, hub, "s1")
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Stop()
	hub.Stop()

	require.Eventually(t, conn.IsClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())

	// registering after shutdown closes the client straight away
	late := NewClient(hub, NewMockConnection(), "s2", ClientOptions{}, nil)
	hub.Register(late)
	_, ok := <-late.send
	assert.False(t, ok)
}

func TestHubPublishQueueFullDropsEvents(t *testing.T) {
	hub := NewHub(nil, nil)

	for i := 0; i < cap(hub.publish)+10; i++ {
		hub.PublishSession(context.Background(), "s1", i)
	}

	assert.Equal(t, int64(10), hub.GetHubMetrics()["messages_dropped"])
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(NewHub(nil, nil), NewMockConnection(), "s1", ClientOptions{PingPeriod: 2 * time.Minute, PongWait: time.Minute}, nil)

	assert.Equal(t, time.Minute, client.pongWait)
	assert.Equal(t, 54*time.Second, client.pingPeriod)
	assert.Equal(t, "127.0.0.1:8080", client.remoteAddr)
	assert.NotEmpty(t, client.id)
}
