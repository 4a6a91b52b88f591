package ws

import (
	"context"
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// Client is the part of a websocket connection the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Event is the envelope every broadcast message is sent in.
type Event struct {
	Type   string      `json:"type"`
	Action string      `json:"action"`
	Data   interface{} `json:"data"`
}

type Hub struct {
	clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	done       chan struct{}
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			return

		case conn := <-h.Register:
			h.clients[conn] = true
			h.log.Debug("ws client connected", zap.Int("clients", len(h.clients)))

		case conn := <-h.Unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}

		case message := <-h.Broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.clients, conn)
				}
			}
		}
	}
}

// Join registers a client with the running hub. It reports false once the
// hub has stopped, so connection handlers never block on a dead hub.
func (h *Hub) Join(c Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Leave unregisters a client; it is a no-op after shutdown.
func (h *Hub) Leave(c Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// Publish queues an event for every connected client. It never blocks: when
// the queue is full the event is dropped and logged.
func (h *Hub) Publish(eventType, action string, data interface{}) {
	msg, err := json.Marshal(Event{Type: eventType, Action: action, Data: data})
	if err != nil {
		h.log.Error("ws event marshal failed", zap.String("action", action), zap.Error(err))
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn("ws broadcast queue full, dropping event", zap.String("action", action))
	}
}
