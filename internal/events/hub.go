package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	clientBuffer      = 16
	heartbeatInterval = 15 * time.Second
)

// Client is one open event stream. Activity narrows delivery to events for a
// single activity; empty receives everything.
type Client struct {
	ID       uuid.UUID
	Activity string
	Outbound chan ActivityEvent
	done     chan struct{}
	once     sync.Once
}

// Hub fans events out to every connected client without blocking the
// publisher: a client whose buffer is full misses the event.
type Hub struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	clients map[*Client]bool
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger.With("component", "EventHub"),
		clients: make(map[*Client]bool),
	}
}

// Register adds a client and returns it.
func (h *Hub) Register(activity string) *Client {
	c := &Client{
		ID:       uuid.New(),
		Activity: activity,
		Outbound: make(chan ActivityEvent, clientBuffer),
		done:     make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	h.logger.Debug("Event client connected", "client_id", c.ID, "activity", activity)
	return c
}

// Unregister removes the client and stops its stream.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.once.Do(func() { close(c.done) })

	h.logger.Debug("Event client disconnected", "client_id", c.ID)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers event to every matching client.
func (h *Hub) Broadcast(event ActivityEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.Activity != "" && event.Activity != "" && c.Activity != event.Activity {
			continue
		}
		select {
		case c.Outbound <- event:
		default:
			h.logger.Warn("Dropping event; client buffer full", "client_id", c.ID, "event_type", event.Type)
		}
	}
}

// Serve streams events to c as server-sent events until the request ends.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, c *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case event := <-c.Outbound:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Warn("Failed to marshal event", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
