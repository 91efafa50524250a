package ws

import (
	"encoding/json"
	"sync"

	"earnhub/internal/logger"
	"earnhub/internal/notify"
)

// Hub tracks connected clients per user and pushes transition events
// to them. It implements notify.Sink, so it plugs into the same
// fan-out as the Telegram sink.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
}

// Push sends a payload to all connections of one user. A client whose
// send buffer is full is dropped rather than blocking the hub. Push
// never blocks the caller; services deliver notifications on the
// request goroutine.
func (h *Hub) Push(userID int64, payload []byte) {
	var stale []*Client
	h.mu.RLock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	// close() re-enters the hub to unregister, so it must run with the
	// lock released.
	for _, c := range stale {
		logger.Warn("ws: send buffer full, dropping client", "user_id", userID)
		c.close()
	}
}

// Notify implements notify.Sink.
func (h *Hub) Notify(e notify.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	h.Push(e.UserID, payload)
}

// ConnectedUsers reports how many distinct users hold a connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
