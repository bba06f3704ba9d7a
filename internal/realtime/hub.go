// Package realtime pushes session events to the browser over WebSocket and
// carries the live catalog search protocol.
package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"elite-decor-web/internal/metrics"
	"elite-decor-web/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 16 * 1024
	sendBuffer = 32
)

// Server to browser event types.
const (
	EventIdentityChanged = "identity_changed"
	EventRoleChanged     = "role_changed"
	EventSearchResults   = "search_results"
	EventError           = "error"
)

// Browser to server message types.
const (
	MessageSearch      = "search"
	MessageRefreshRole = "refresh_role"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ClientMessage is one message read from a browser socket.
type ClientMessage struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Category string `json:"category,omitempty"`
	Sort     string `json:"sort,omitempty"`
}

// MessageHandler handles a message from a session's socket.
type MessageHandler func(sessionID string, msg ClientMessage)

// SessionLookup finds the sessions signed in as an email.
type SessionLookup interface {
	ForEmail(email string) []*session.Context
}

type connection struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// Hub tracks open sockets by session id.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*connection]bool
	lookup   SessionLookup
	logger   zerolog.Logger
}

func NewHub(lookup SessionLookup, logger zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*connection]bool),
		lookup:   lookup,
		logger:   logger.With().Str("component", "realtime").Logger(),
	}
}

// NewUpgrader accepts same-host requests and the listed origins.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed[origin] {
				return true
			}
			return strings.TrimPrefix(strings.TrimPrefix(origin, "https://"), "http://") == r.Host
		},
	}
}

func (h *Hub) register(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.sessions[c.sessionID]
	if !ok {
		conns = make(map[*connection]bool)
		h.sessions[c.sessionID] = conns
	}
	conns[c] = true
	metrics.RealtimeConnections.Inc()
}

func (h *Hub) unregister(c *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.sessions[c.sessionID]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.sessions, c.sessionID)
	}
	close(c.send)
	metrics.RealtimeConnections.Dec()
}

// Connections returns the number of open sockets of a session.
func (h *Hub) Connections(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Publish sends event to every socket of a session. Slow sockets drop it.
func (h *Hub) Publish(sessionID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("failed to encode event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn().Str("type", event.Type).Msg("socket too slow, event dropped")
		}
	}
}

func (h *Hub) IdentityChanged(sessionID string) {
	h.Publish(sessionID, Event{Type: EventIdentityChanged})
}

// RoleChanged hints every session of email to refetch its role.
func (h *Hub) RoleChanged(email string) {
	if h.lookup == nil {
		return
	}
	for _, sc := range h.lookup.ForEmail(email) {
		h.Publish(sc.ID, Event{Type: EventRoleChanged})
	}
}

// Serve runs a socket until it closes. handle is called for each message
// from the read loop.
func (h *Hub) Serve(conn *websocket.Conn, sessionID string, handle MessageHandler) {
	c := &connection{
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c, handle)
}

func (h *Hub) readPump(c *connection, handle MessageHandler) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("socket closed")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.Publish(c.sessionID, Event{Type: EventError, Payload: map[string]string{"message": "invalid message"}})
			continue
		}
		if handle != nil {
			handle(c.sessionID, msg)
		}
	}
}

func (h *Hub) writePump(c *connection) {
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
