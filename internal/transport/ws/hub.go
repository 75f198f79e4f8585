package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgConnected          MessageType = "connected"
	MsgSubmissionReceived MessageType = "submission_received"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection is one admin dashboard subscribed to the live feed
type Connection struct {
	Username string
	Send     chan []byte
}

// NewConnection creates a connection with a buffered send queue
func NewConnection(username string) *Connection {
	return &Connection{
		Username: username,
		Send:     make(chan []byte, 256),
	}
}

// Hub fans submission events out to connected admins. A single goroutine
// owns the connection set; it closes every Send channel when the hub stops.
type Hub struct {
	conns map[*Connection]struct{}
	mu    sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	log *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		conns:      make(map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.conns[conn] = struct{}{}
			n := len(h.conns)
			h.mu.Unlock()
			h.log.Info("admin connected to live feed", zap.String("user", conn.Username), zap.Int("connections", n))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				close(conn.Send)
				h.log.Info("admin disconnected from live feed", zap.String("user", conn.Username))
			}
			h.mu.Unlock()

		case data := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.conns {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for conn := range h.conns {
				delete(h.conns, conn)
				close(conn.Send)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a connection. It returns false once the hub is closed.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection and closes its send queue
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// ConnectionCount returns the number of connected admins
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastToAdmins sends a message to every admin (implements service.Broadcaster).
// It never blocks the caller; messages are dropped when the queue is full.
func (h *Hub) BroadcastToAdmins(msgType string, payload interface{}) {
	data, err := encode(MessageType(msgType), payload)
	if err != nil {
		h.log.Warn("encode live feed message", zap.String("type", msgType), zap.Error(err))
		return
	}

	select {
	case <-h.done:
	case h.broadcast <- data:
	default:
		h.log.Warn("live feed queue full, dropping message", zap.String("type", msgType))
	}
}

// Close stops the hub and waits for its goroutine to exit
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}

func encode(msgType MessageType, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: raw})
}
