package notification

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
)

const maxHubConnections = 100

// Hub fans newly created alerts out to connected dashboard clients.
type Hub struct {
	mu          sync.Mutex
	connections map[*websocket.Conn]bool
	logger      *logging.Logger
}

// NewHub returns an empty Hub.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// Add registers a dashboard connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.connections) >= maxHubConnections {
		h.logger.Warnf("Max dashboard connections reached, rejecting new connection")
		conn.Close()
		return
	}
	h.connections[conn] = true
	h.logger.Infof("Dashboard connection added (total: %d)", len(h.connections))
}

// Remove unregisters a dashboard connection.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[conn]; ok {
		delete(h.connections, conn)
		h.logger.Infof("Dashboard connection removed (remaining: %d)", len(h.connections))
	}
}

// Broadcast sends the alert to every connected client. Dead connections
// are dropped.
func (h *Hub) Broadcast(alert models.NotificationAlert) {
	payload, err := json.Marshal(alert)
	if err != nil {
		h.logger.Errorf("Failed to marshal alert %s: %v", alert.ID, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Errorf("Failed to push alert to dashboard client: %v", err)
			conn.Close()
			delete(h.connections, conn)
		}
	}
}
