package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/ws"
)

// HandleSessionWebSocket streams a session's frames and accepts its commands
func HandleSessionWebSocket(hub *ws.Hub, manager *game.SessionManager) gin.HandlerFunc {
	return ws.HandleWebSocket(hub, manager)
}
