package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origins are enforced by the CORS middleware and the session token
	},
}

const (
	sendBuffer   = 256
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Client is one renderer connection bound to one session.
type Client struct {
	conn      *websocket.Conn
	sessionID string
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		conn:      conn,
		sessionID: sessionID,
		send:      make(chan []byte, sendBuffer),
		done:      make(chan struct{}),
	}
}

// close stops the write pump. send is never closed: the simulation goroutine
// may still be writing to it.
func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Hub maintains the set of active clients
type Hub struct {
	clients    map[string]*Client // sessionID -> Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// bigWin is the multiplier at which a landing is announced to everyone.
	bigWin float64
}

// NewHub creates a new Hub
func NewHub(bigWin float64) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		bigWin:     bigWin,
	}
}

// Run registers and unregisters clients until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, c := range h.clients {
				c.close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if old, exists := h.clients[client.sessionID]; exists {
				log.Infof("[WS] Session %s reconnecting - closing old connection", client.sessionID)
				if err := old.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
					log.Debugf("[WS] close control to old client %s: %v", old.sessionID, err)
				}
				old.close()
			}
			h.clients[client.sessionID] = client
			h.mu.Unlock()
			log.Infof("[WS] Session %s connected", client.sessionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[client.sessionID]; ok && cur == client {
				delete(h.clients, client.sessionID)
				log.Infof("[WS] Session %s disconnected", client.sessionID)
			}
			h.mu.Unlock()
			client.close()
		}
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends a message to every connected client
func (h *Hub) Broadcast(msgType string, data interface{}) {
	payload, err := encode(msgType, data)
	if err != nil {
		log.Errorf("[WS] Error marshaling %s: %v", msgType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		client.push(payload)
	}
}

// SendToSession sends a message to the client of one session
func (h *Hub) SendToSession(sessionID, msgType string, data interface{}) {
	payload, err := encode(msgType, data)
	if err != nil {
		log.Errorf("[WS] Error marshaling %s: %v", msgType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, exists := h.clients[sessionID]; exists {
		client.push(payload)
	} else {
		log.Debugf("[WS] SendToSession no client for session %s", sessionID)
	}
}

// RelayLanding announces ev to every client when it reaches the big win
// multiplier.
func (h *Hub) RelayLanding(ev models.LandingEvent) {
	if h.bigWin <= 0 || ev.Multiplier < h.bigWin {
		return
	}
	h.Broadcast("big_win", bigWinData{
		SessionID:  ev.SessionID,
		Multiplier: ev.Multiplier,
		WinAmount:  ev.WinAmount,
	})
}

// Message types
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

func encode(msgType string, data interface{}) ([]byte, error) {
	return json.Marshal(outMessage{Type: msgType, Data: data})
}

// push queues payload without blocking. A full buffer drops the message.
func (c *Client) push(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		log.Debugf("[WS] send buffer full for session %s, dropping message", c.sessionID)
		return false
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Debugf("[WS] write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debugf("[WS] ping error for session %s: %v", c.sessionID, err)
				return
			}
		}
	}
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	payload, _ := encode("error", messageData{Message: message})
	c.push(payload)
}
