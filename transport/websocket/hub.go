package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/knights-tour/tour/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// EventStateUpdate is sent after every change to a tour's state.
	EventStateUpdate = "state_update"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	TourState *engine.TourState `json:"tour_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      any               `json:"data,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	mu sync.RWMutex

	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Queued events waiting to be fanned out
	broadcast chan *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:  make(map[string]map[*Client]bool),
		broadcast: make(chan *Message, engine.WebSocketBufferSize),
	}
}

// Run fans out queued events and returns when ctx is cancelled, closing
// every remaining client
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}

	h.registerClient(client)

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a tour state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.TourState) {
	h.broadcastMessage(&Message{
		SessionID: sessionID,
		TourState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent queues a custom event for all clients in a session. The
// event is dropped when the queue is full.
func (h *Hub) BroadcastEvent(sessionID string, event string, data any) {
	message := &Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}

	select {
	case h.broadcast <- message:
	default:
		logrus.WithFields(logrus.Fields{
			"session_id": sessionID,
			"event":      event,
		}).Warn("websocket broadcast queue full, dropping event")
	}
}

// ClientCount returns the number of clients watching a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	logrus.WithFields(logrus.Fields{
		"session_id": client.sessionID,
		"clients":    len(h.sessions[client.sessionID]),
	}).Debug("websocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeClient(client)
}

// removeClient expects h.mu to be held
func (h *Hub) removeClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	logrus.WithFields(logrus.Fields{
		"session_id": client.sessionID,
		"remaining":  len(clients),
	}).Debug("websocket client unregistered")
}

// broadcastMessage sends a message to all clients in a session. Clients
// whose send buffer is full are dropped.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		logrus.WithError(err).Warn("failed to marshal websocket message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			h.removeClient(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.sessions {
		for client := range clients {
			h.removeClient(client)
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming messages are ignored; reading keeps the pong handler running
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("session_id", c.sessionID).Debug("websocket read error")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
