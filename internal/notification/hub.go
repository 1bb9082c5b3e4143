package notification

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client pairs a connection with its write lock. gorilla/websocket allows
// a single concurrent writer per connection, so every outgoing frame, data
// and pings alike, goes through the lock.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *client) writePing() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Hub is the process-wide registry of live push connections, at most one
// per user. Registering a second connection for the same user closes the
// previous one.
type Hub struct {
	connections map[int64]*client
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[int64]*client),
	}
}

func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[userID]; exists && old != nil {
		_ = old.conn.Close()
	}

	h.connections[userID] = &client{conn: conn}
}

func (h *Hub) Unregister(userID int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if cl, exists := h.connections[userID]; exists && cl != nil {
		_ = cl.conn.Close()
		delete(h.connections, userID)
	}
}

// UnregisterConn evicts conn only while it is still the registered
// connection for userID. A read loop tearing down after a reconnect must
// not take the replacement with it.
func (h *Hub) UnregisterConn(userID int64, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if cl, exists := h.connections[userID]; exists && cl != nil && cl.conn == conn {
		_ = cl.conn.Close()
		delete(h.connections, userID)
	}
}

func (h *Hub) clientFor(userID int64) *client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.connections[userID]
}

// SendToUser delivers at most once, best effort. A failed write evicts the
// stale connection; the caller never treats a miss as an error.
func (h *Hub) SendToUser(userID int64, message interface{}) bool {
	cl := h.clientFor(userID)
	if cl == nil {
		return false
	}

	if err := cl.writeJSON(message); err != nil {
		h.UnregisterConn(userID, cl.conn)
		return false
	}

	return true
}

// Ping writes a keepalive frame on conn while it is still the registered
// connection for userID. Returns false once the connection was replaced or
// the write fails, signalling the caller's loop to stop.
func (h *Hub) Ping(userID int64, conn *websocket.Conn) bool {
	cl := h.clientFor(userID)
	if cl == nil || cl.conn != conn {
		return false
	}

	if err := cl.writePing(); err != nil {
		h.UnregisterConn(userID, conn)
		return false
	}

	return true
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.connections[userID]
	return exists
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, cl := range h.connections {
		if cl != nil {
			_ = cl.conn.Close()
		}
		delete(h.connections, userID)
	}
}
