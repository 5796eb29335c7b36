package ws

import (
	"encoding/json"
	"sync"

	"task_api/internal/domain"
	"task_api/internal/logger"

	"github.com/google/uuid"
)

// Hub tracks open event connections per user. A task event only ever
// reaches the connections of the task's owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[uuid.UUID]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
}

// Unregister removes c and closes its send queue. Calling it twice is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	close(c.Send)
}

// Notify implements service.TaskNotifier. Slow clients whose queue is full
// are dropped rather than blocking the request that produced the event.
func (h *Hub) Notify(owner uuid.UUID, kind string, task *domain.Task) {
	msg, err := json.Marshal(Event{Type: kind, Task: task})
	if err != nil {
		logger.Error("ws: marshal event", "error", err, "kind", kind)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients[owner] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws: send queue full, dropping client", "user_id", owner)
			h.removeLocked(c)
		}
	}
}

// Connections returns the number of open connections for a user.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
