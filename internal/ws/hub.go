// Package ws maintains live websocket connections per user and pushes a
// refresh event whenever fresh observations for that user's services have
// been persisted.
package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

type Hub struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*websocket.Conn]bool
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[uuid.UUID]map[*websocket.Conn]bool),
	}
}

func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
}

func (h *Hub) Unregister(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(userID, conn)
}

// remove must be called with the lock held.
func (h *Hub) remove(userID uuid.UUID, conn *websocket.Conn) {
	if conns, ok := h.clients[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// BroadcastRefresh tells all of a user's connections that new monitoring
// data is available. Connections that fail to accept the write are dropped.
func (h *Hub) BroadcastRefresh(userID uuid.UUID) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[userID]))
	for conn := range h.clients[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			h.logger.Warn("failed to set write deadline", zap.Error(err))
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":    "refresh",
			"message": "Service status updated",
		})

		if err != nil {
			h.logger.Warn("dropping websocket client", zap.Error(err))
			h.mu.Lock()
			h.remove(userID, conn)
			h.mu.Unlock()
			conn.Close()
		}
	}
}
