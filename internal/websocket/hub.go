// Package websocket pushes live completion events to connected viewers, so
// public progress pages update while the streamer plays.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event is a real-time progress notification broadcast to all clients.
type Event struct {
	Type          string `json:"type"`
	Username      string `json:"username,omitempty"`
	GameSlug      string `json:"game_slug,omitempty"`
	AchievementID string `json:"achievement_id,omitempty"`
	Completed     bool   `json:"completed"`
	// Count is how many completions the event changed; 1 for toggles,
	// more for bulk syncs.
	Count int `json:"count,omitempty"`
}

// CompletionEvent builds the event emitted when one achievement flips.
func CompletionEvent(username, gameSlug, achievementID string, completed bool) Event {
	return Event{
		Type:          "completion",
		Username:      username,
		GameSlug:      gameSlug,
		AchievementID: achievementID,
		Completed:     completed,
		Count:         1,
	}
}

// SyncEvent builds the event emitted after a bulk sync changes state.
func SyncEvent(username string, changed int) Event {
	return Event{
		Type:     "sync",
		Username: username,
		Count:    changed,
	}
}

// Hub maintains the set of active WebSocket clients and broadcasts events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends an event to all connected clients.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop the event rather than block
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
