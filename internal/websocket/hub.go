package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/princekumarofficial/videos-service/internal/types"
)

// broadcastBuffer bounds the events waiting for the hub loop.
const broadcastBuffer = 64

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	// Registered clients mapped by client ID
	clients map[string]*Client

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex to protect clients map
	mu sync.RWMutex

	// Channel to broadcast events
	broadcast chan *types.Event

	// Closed when Run returns
	done chan struct{}
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *types.Event, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns when ctx is cancelled,
// closing every client connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			slog.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID()] = client
			h.mu.Unlock()
			slog.Info("WebSocket client connected", slog.String("client_id", client.ID()))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID()]; ok {
				delete(h.clients, client.ID())
				close(client.send)
				slog.Info("WebSocket client disconnected", slog.String("client_id", client.ID()))
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.broadcastToClients(event)
		}
	}
}

// RegisterClient registers a new client. It reports false once the hub has stopped.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// UnregisterClient unregisters a client
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues an event for every connected client
func (h *Hub) Broadcast(event *types.Event) {
	select {
	case h.broadcast <- event:
	default:
		slog.Warn("Broadcast channel is full, dropping event", slog.String("type", string(event.Type)))
	}
}

// broadcastToClients runs on the hub loop and hands the event to each client
func (h *Hub) broadcastToClients(event *types.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, client := range h.clients {
		if err := client.SendEvent(event); err != nil {
			slog.Error("Failed to send event to client",
				slog.String("client_id", id),
				slog.String("error", err.Error()))
			// Remove the client if sending fails
			go h.UnregisterClient(client)
		}
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
