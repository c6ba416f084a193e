package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/game"
)

type DropData struct {
	Bet json.RawMessage `json:"bet"`
}

type ResizeData struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

const commandTimeout = 5 * time.Second

// HandleWebSocket upgrades an authenticated request and attaches the
// connection to its session's simulation loop. The session ID is expected in
// the gin context under "session_id".
func HandleWebSocket(hub *Hub, manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString("session_id")
		runner, err := manager.Get(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warnf("[WS] Upgrade error: %v", err)
			return
		}

		client := newClient(conn, sessionID)
		hub.register <- client
		runner.Touch()
		runner.SetSink(client)

		go client.writePump()
		go client.readPump(hub, runner)
	}
}

// readPump reads renderer commands until the connection drops.
func (c *Client) readPump(hub *Hub, runner *game.Runner) {
	defer func() {
		runner.ReleaseSink(c)
		hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("[WS] unexpected close for session %s: %v", c.sessionID, err)
			} else {
				log.Debugf("[WS] read ended for session %s: %v", c.sessionID, err)
			}
			return
		}
		runner.Touch()

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError("Invalid message")
			continue
		}

		if !c.handleMessage(runner, msg) {
			return
		}
	}
}

// handleMessage applies one command. It returns false once the session has
// ended.
func (c *Client) handleMessage(runner *game.Runner, msg WSMessage) bool {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case "drop":
		var data DropData
		if len(msg.Data) > 0 {
			if jerr := json.Unmarshal(msg.Data, &data); jerr != nil {
				c.sendError("Invalid drop data")
				return true
			}
		}
		_, err = runner.Drop(ctx, BetInput(data.Bet))
		// Balance and capacity refusals reach the client as notices.
		if errors.Is(err, game.ErrInsufficientBalance) || errors.Is(err, game.ErrCapacityExceeded) {
			err = nil
		}

	case "resize":
		var data ResizeData
		if jerr := json.Unmarshal(msg.Data, &data); jerr != nil || data.Width <= 0 || data.Height <= 0 {
			c.sendError("Invalid resize data")
			return true
		}
		err = runner.Resize(ctx, game.Viewport{Width: data.Width, Height: data.Height})

	case "get_state":
		var snap game.Snapshot
		snap, err = runner.Snapshot(ctx)
		if err == nil {
			c.emit("state", snap)
		}

	default:
		c.sendError("Unknown message type")
		return true
	}

	if errors.Is(err, game.ErrRunnerStopped) {
		c.sendError("Session ended")
		return false
	}
	if err != nil {
		log.Warnf("[WS] %s failed for session %s: %v", msg.Type, c.sessionID, err)
		c.sendError("Request failed")
	}
	return true
}

// BetInput turns the bet field into the text a wager field would hold. Both
// "450" and 450 are accepted; anything else is passed through and falls back
// to the minimum bet.
func BetInput(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}
