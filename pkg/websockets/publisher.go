package websockets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// sendBuffer is how many messages a client may fall behind before it is dropped.
	sendBuffer       = 16
	defaultWriteWait = 5 * time.Second
)

// client owns one connection. Only its writer goroutine writes to conn.
type client struct {
	id     string
	userID string
	conn   Conn
	send   chan []byte
}

// Hub tracks the local connections of each user and pushes messages to them.
// It implements both ConnectionManager and Publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	byUser  map[string]map[string]struct{}
	logger  *slog.Logger

	writeWait time.Duration
}

var (
	_ ConnectionManager = (*Hub)(nil)
	_ Publisher         = (*Hub)(nil)
)

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:   make(map[string]*client),
		byUser:    make(map[string]map[string]struct{}),
		logger:    logger.With("component", "websocket_hub"),
		writeWait: defaultWriteWait,
	}
}

// AddConnection registers conn for userID, starts its writer and returns the
// connection ID.
func (h *Hub) AddConnection(ctx context.Context, userID string, conn Conn) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user ID is required")
	}
	c := &client{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	if h.byUser[userID] == nil {
		h.byUser[userID] = make(map[string]struct{})
	}
	h.byUser[userID][c.id] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	return c.id, nil
}

// RemoveConnection forgets a connection and stops its writer. Removing an
// unknown ID is not an error.
func (h *Hub) RemoveConnection(ctx context.Context, connectionID string) error {
	h.drop(connectionID)
	return nil
}

// drop unregisters a connection and closes its send channel. It reports
// whether the connection was still registered.
func (h *Hub) drop(connectionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[connectionID]
	if !ok {
		return false
	}
	delete(h.clients, connectionID)
	delete(h.byUser[c.userID], connectionID)
	if len(h.byUser[c.userID]) == 0 {
		delete(h.byUser, c.userID)
	}
	close(c.send)
	return true
}

// Publish queues a message for every connection of message.UserID and
// returns without waiting for the writes. A connection whose queue is full
// is closed and removed.
func (h *Hub) Publish(ctx context.Context, message Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	var slow []*client
	h.mu.RLock()
	for id := range h.byUser[message.UserID] {
		c := h.clients[id]
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.WarnContext(ctx, "client is not keeping up, dropping connection", "connectionId", c.id, "user_id", c.userID)
		if h.drop(c.id) {
			_ = c.conn.Close()
		}
	}
	return nil
}

// writePump drains the client's queue until it is closed. Every write has a
// deadline, so a client that stopped reading is dropped instead of stalling.
func (h *Hub) writePump(c *client) {
	for payload := range c.send {
		err := c.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err == nil {
			err = c.conn.WriteMessage(websocket.TextMessage, payload)
		}
		if err != nil {
			h.logger.Info("stale connection found, deleting", "connectionId", c.id, "error", err)
			h.drop(c.id)
			_ = c.conn.Close()
			return
		}
	}
}

// ConnectionCount returns the number of open connections for a user.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}
