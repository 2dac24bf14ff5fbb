package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/metrics"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Hub tracks the embed sessions connected to this instance.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
	closed  bool
	logger  *zap.Logger
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client. It returns false once the hub is shutting down.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c.ID] = c
	h.mu.Unlock()
	metrics.SessionsActive.Inc()
	h.logger.Debug("embed client connected", zap.String("client_id", c.ID))
	return true
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.ID]
	delete(h.clients, c.ID)
	h.mu.Unlock()
	if ok {
		metrics.SessionsActive.Dec()
		h.logger.Debug("embed client disconnected", zap.String("client_id", c.ID))
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendToClient sends a message to a single client. Dropped when its buffer is full.
func (h *Hub) SendToClient(clientID string, event string, payload interface{}) {
	h.mu.RLock()
	c, ok := h.clients[clientID]
	h.mu.RUnlock()
	if !ok || c == nil {
		return
	}
	c.emit(event, payload)
}

// Shutdown destroys every player session and closes their connections.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for _, c := range clients {
			wg.Add(1)
			go func(c *Client) {
				defer wg.Done()
				c.close()
			}(c)
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("embed hub stopped", zap.Int("sessions", len(clients)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func encode(event string, payload interface{}) (WSMessage, error) {
	var data []byte
	switch v := payload.(type) {
	case nil:
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return WSMessage{}, err
		}
	}
	return WSMessage{Event: event, Data: data}, nil
}
