package socket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types pushed to connected admin dashboards.
const (
	EventDriverRegistered    = "driver.registered"
	EventDriverStatusChanged = "driver.status_changed"
)

// Event is the JSON payload pushed over the socket.
type Event struct {
	Type     string    `json:"type"`
	DriverID string    `json:"driver_id"`
	Status   string    `json:"status,omitempty"`
	At       time.Time `json:"at"`
}

// Hub tracks the connected admin WebSocket clients, keyed by admin ID.
type Hub struct {
	clients map[string]*websocket.Conn
	mu      sync.RWMutex
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		logger:  logger,
	}
}

// Register adds a new client to the hub, replacing any prior connection
// for the same admin.
func (h *Hub) Register(adminID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[adminID]; ok {
		old.Close()
	}
	h.clients[adminID] = conn
	h.logger.Info("websocket client registered", zap.String("adminID", adminID))
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(adminID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[adminID]; ok {
		delete(h.clients, adminID)
		h.logger.Info("websocket client unregistered", zap.String("adminID", adminID))
	}
}

// Broadcast pushes an event to every connected admin. Delivery is best
// effort; a dead connection is dropped, never retried.
func (h *Hub) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for adminID, conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("dropping dead websocket client", zap.String("adminID", adminID), zap.Error(err))
			conn.Close()
			delete(h.clients, adminID)
		}
	}
}
