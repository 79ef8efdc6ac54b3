package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dbehnke/dmr-lc/pkg/decoder"
	"github.com/dbehnke/dmr-lc/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event types sent to dashboard clients
const (
	EventMessage = "lc_message"
	EventHistory = "lc_history"
)

const writeWait = 5 * time.Second

// Event is one WebSocket frame sent to clients
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Marshal converts an event to JSON bytes
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Client is a connected dashboard
type Client struct {
	ID       string
	conn     *websocket.Conn
	messages chan []byte
}

// WebSocketHub fans decoded messages out to dashboard clients. Newly
// registered clients first receive the hub's recent history.
type WebSocketHub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	history    *RecentRecords
	done       chan struct{}
	logger     *logger.Logger
	mu         sync.RWMutex
}

// NewWebSocketHub creates a hub replaying history to new clients
func NewWebSocketHub(history *RecentRecords, log *logger.Logger) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		history:    history,
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run starts the hub event loop
func (h *WebSocketHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("WebSocket client registered", logger.String("client_id", client.ID))
			h.sendHistory(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.messages)
			}
			h.mu.Unlock()
			h.logger.Debug("WebSocket client unregistered", logger.String("client_id", client.ID))

		case event := <-h.broadcast:
			data, err := event.Marshal()
			if err != nil {
				h.logger.Error("Failed to marshal event", logger.Error(err))
				continue
			}
			h.mu.RLock()
			for client := range h.clients {
				h.deliver(client, data)
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.logger.Info("WebSocket hub shutting down")
			h.mu.Lock()
			for client := range h.clients {
				close(client.messages)
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *WebSocketHub) sendHistory(client *Client) {
	if h.history == nil {
		return
	}
	event := Event{Type: EventHistory, Timestamp: time.Now(), Data: h.history.Last(0)}
	data, err := event.Marshal()
	if err != nil {
		h.logger.Error("Failed to marshal history", logger.Error(err))
		return
	}
	h.deliver(client, data)
}

func (h *WebSocketHub) deliver(client *Client, data []byte) {
	select {
	case client.messages <- data:
	default:
		h.logger.Warn("Client message buffer full, skipping", logger.String("client_id", client.ID))
	}
}

// Broadcast sends an event to all connected clients
func (h *WebSocketHub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Broadcast channel full, dropping event", logger.String("event_type", event.Type))
	}
}

// BroadcastMessage sends one decoded message to all clients
func (h *WebSocketHub) BroadcastMessage(rec decoder.Record) {
	h.Broadcast(Event{Type: EventMessage, Timestamp: rec.DecodedAt, Data: rec})
}

// Handler returns an HTTP handler for WebSocket connections
func (h *WebSocketHub) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("WebSocket upgrade failed", logger.Error(err))
			return
		}
		client := &Client{ID: uuid.NewString(), conn: conn, messages: make(chan []byte, 256)}
		select {
		case h.register <- client:
		case <-h.done:
			_ = conn.Close()
			return
		}

		// Clients only listen; reading detects the close
		go func() {
			defer func() {
				select {
				case h.unregister <- client:
				case <-h.done:
				}
				_ = client.conn.Close()
			}()
			client.conn.SetReadLimit(1024)
			for {
				if _, _, err := client.conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		go func() {
			for msg := range client.messages {
				_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.logger.Debug("WebSocket write failed", logger.String("client_id", client.ID), logger.Error(err))
				}
			}
		}()
	})
}

// GetClientCount returns the number of connected clients
func (h *WebSocketHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
