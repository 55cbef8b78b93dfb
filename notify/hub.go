// Package notify pushes order events to connected websocket views.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"edpharma/events"
	"edpharma/logger"
	"edpharma/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

// Message is the envelope written to every socket.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	userID string
	admin  bool
}

// Hub fans order events out to the owner's connections and to every admin connection.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	origins  map[string]bool
	logger   *logger.Logger
}

// NewHub accepts upgrades from the given origins; "*" or no origins allows any.
// Requests without an Origin header (non-browser clients) are always accepted.
func NewHub(log *logger.Logger, allowedOrigins ...string) *Hub {
	h := &Hub{clients: make(map[*client]struct{}), logger: log}
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			if h.origins == nil {
				h.origins = make(map[string]bool)
			}
			h.origins[strings.ToLower(o)] = true
		}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.origins == nil || h.origins["*"] {
		return true
	}
	return h.origins[strings.ToLower(strings.TrimRight(origin, "/"))]
}

// Serve upgrades the request and blocks until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, p models.Principal) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), userID: p.ID, admin: p.IsAdmin()}
	h.register(c)
	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("Websocket client connected", "user_id", c.userID)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Count reports the number of open connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) OrderCreated(ctx context.Context, order models.Order) error {
	return h.deliver(order.UserID, Message{Type: events.SubjectOrderCreated, Data: events.NewOrderCreated(order)})
}

func (h *Hub) OrderStatusChanged(ctx context.Context, order models.Order, from models.OrderStatus) error {
	return h.deliver(order.UserID, Message{Type: events.SubjectOrderStatusChanged, Data: events.NewOrderStatusChanged(order, from)})
}

// deliver never blocks: a client whose buffer is full is disconnected.
func (h *Hub) deliver(ownerID string, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.userID != ownerID && !c.admin {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow websocket client", "user_id", c.userID)
			delete(h.clients, c)
			close(c.send)
		}
	}
	return nil
}
