package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"devmon/internal/models"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string      `json:"type"` // "stats", "error", "auth", "ping"
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Token     string      `json:"token,omitempty"` // For auth messages from client
}

// ClientConnection represents a connected UI client
type ClientConnection struct {
	ID    string
	Conn  WebSocketConn
	Send  chan WebSocketMessage
	Close chan bool
}

// WebSocketConn is the subset of *websocket.Conn the hub and pumps use.
type WebSocketConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// WebSocketHub manages connected UI clients and owns the sampler lifecycle:
// the loop starts when the first client connects (a consuming view became
// ready) and stops when the last one disconnects.
type WebSocketHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	mu         sync.RWMutex
	sampler    *Sampler
	done       chan bool
}

var wsHub *WebSocketHub

// InitWebSocketHub initializes the WebSocket hub and starts its event loop.
func InitWebSocketHub(sampler *Sampler) *WebSocketHub {
	wsHub = &WebSocketHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 256),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		sampler:    sampler,
		done:       make(chan bool),
	}

	go wsHub.run()

	return wsHub
}

// GetWebSocketHub returns the WebSocket hub
func GetWebSocketHub() *WebSocketHub {
	return wsHub
}

// run manages the hub's event loop
func (h *WebSocketHub) run() {
	for {
		select {
		case <-h.done:
			h.sampler.Stop()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			total := len(h.clients)
			h.mu.Unlock()
			slog.Info("[WS] client connected", "client", client.ID, "total", total)

			if total == 1 {
				h.sampler.Start(h.PublishSnapshot, h.PublishError)
			}

		case clientID := <-h.unregister:
			h.mu.Lock()
			client, exists := h.clients[clientID]
			if exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			if !exists {
				continue
			}
			slog.Info("[WS] client disconnected", "client", clientID, "total", total)

			if total == 0 {
				h.sampler.Stop()
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- msg:
				default:
					// Client's send channel is full, skip this message
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishSnapshot receives one successful tick from the sampler: it stores
// the latest snapshot for REST readers, records a history point, and fans
// the snapshot out to connected clients.
func (h *WebSocketHub) PublishSnapshot(snapshot *models.Snapshot) {
	GetSnapshotCache().Set(snapshot)

	if history := GetHistoryService(); history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := history.Record(ctx, snapshot); err != nil {
			slog.Warn("[WS] failed to record history point", "err", err)
		}
		cancel()
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Warn("[WS] failed to marshal snapshot", "err", err)
		return
	}

	h.enqueue(WebSocketMessage{
		Type:      "stats",
		Timestamp: time.Now(),
		Data:      json.RawMessage(data),
	})
}

// PublishError receives one failed tick from the sampler and forwards the
// description to connected clients.
func (h *WebSocketHub) PublishError(message string) {
	h.enqueue(WebSocketMessage{
		Type:      "error",
		Timestamp: time.Now(),
		Error:     message,
	})
}

// enqueue hands a message to the broadcast loop without blocking the
// sampler; with no consumer keeping up the message is dropped.
func (h *WebSocketHub) enqueue(msg WebSocketMessage) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// Register adds a new client to the hub
func (h *WebSocketHub) Register(client *ClientConnection) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(clientID string) {
	h.unregister <- clientID
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StopWebSocketHub gracefully stops the hub and the sampling loop.
func StopWebSocketHub() {
	if wsHub != nil {
		wsHub.done <- true
	}
}
