package web

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// safeConn serializes writes; gorilla connections allow one concurrent writer.
type safeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (sc *safeConn) WriteJSON(v any) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_ = sc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return sc.conn.WriteJSON(v)
}

func (sc *safeConn) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.Close()
}

// Hub tracks connected WebSocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*safeConn]struct{}
	log     *slog.Logger
}

func NewHub() *Hub {
	return &Hub{clients: map[*safeConn]struct{}{}, log: logger.Component("hub")}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(c *safeConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) remove(c *safeConn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.Close()
	}
}

// Broadcast sends v to every client, dropping clients that fail.
func (h *Hub) Broadcast(v any) {
	h.mu.Lock()
	clients := make([]*safeConn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.WriteJSON(v); err != nil {
			h.log.Debug("drop client", "err", err)
			h.remove(c)
		}
	}
}

func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = map[*safeConn]struct{}{}
	h.mu.Unlock()
	for c := range clients {
		_ = c.Close()
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", "err", err)
		return
	}
	client := &safeConn{conn: conn}
	s.hub.add(client)
	s.log.Debug("websocket client connected", "remote", c.Request.RemoteAddr)

	// Clients only listen; reading drains control frames and notices close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.remove(client)
}
