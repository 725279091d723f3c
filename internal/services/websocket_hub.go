package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// WebSocketHub pushes snapshot refresh events to connected dashboards.
// Clients are read-mostly; the only inbound traffic we care about is close.
type WebSocketHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
	logger  *logrus.Logger
}

// RefreshEvent is the wire payload broadcast after each stored snapshot.
type RefreshEvent struct {
	Type      string    `json:"type"`
	Week      int       `json:"week"`
	Mode      string    `json:"mode"`
	Degraded  bool      `json:"degraded"`
	Players   int       `json:"players"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewWebSocketHub creates an empty hub.
func NewWebSocketHub(logger *logrus.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// Register adds a client connection and starts its read loop so closes and
// pings are drained.
func (h *WebSocketHub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"component": "websocket",
		"clients":   count,
	}).Debug("Client connected")

	go func() {
		defer h.unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *WebSocketHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// NotifyRefresh broadcasts a refresh event to every connected client.
// Dead connections are dropped on write failure.
func (h *WebSocketHub) NotifyRefresh(snap *nfl.Snapshot) {
	if snap == nil {
		return
	}
	payload, err := json.Marshal(RefreshEvent{
		Type:      "snapshot_refreshed",
		Week:      snap.Week,
		Mode:      snap.Mode,
		Degraded:  snap.Degraded,
		Players:   len(snap.Players),
		FetchedAt: snap.FetchedAt,
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.unregister(conn)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
