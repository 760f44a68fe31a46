package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"budgetbook/internal/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Hub broadcasts notifications to connected websocket clients. Run owns the
// client set; Notify and ServeHTTP only talk to it through channels.
type Hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		logger: logger.WithComponent(log.ComponentNotify),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// single-user app served from the same host
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		clients:    make(map[*websocket.Conn]bool),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				if err := c.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(time.Second)); err != nil {
					h.logger.Debug("Failed to send websocket close", "error", err)
				}
				_ = c.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return nil
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("Websocket client connected", "clients", n)
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.broadcast:
			h.each(func(c *websocket.Conn) error {
				return c.WriteMessage(websocket.TextMessage, msg)
			})
		case <-ticker.C:
			h.each(func(c *websocket.Conn) error {
				return c.WriteMessage(websocket.PingMessage, nil)
			})
		}
	}
}

// each writes to every client, dropping the ones that fail.
func (h *Hub) each(write func(*websocket.Conn) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := write(c); err != nil {
			h.logger.Debug("Dropping websocket client", "error", err)
			_ = c.Close()
			delete(h.clients, c)
		}
	}
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		_ = c.Close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify queues n for broadcast. It returns nil without sending once the hub
// has stopped.
func (h *Hub) Notify(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade to websocket", "error", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		_ = conn.Close()
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		for {
			// clients never send anything we act on
			if _, _, err := conn.ReadMessage(); err != nil {
				select {
				case h.unregister <- conn:
				case <-h.done:
				}
				return
			}
		}
	}()
}
