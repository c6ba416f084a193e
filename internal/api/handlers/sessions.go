package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/auth"
	"github.com/playmatatu/plinko/internal/game"
)

const maxViewport = 10000

// CreateSession starts a session for the caller's viewport and returns the
// token its WebSocket connects with.
func CreateSession(manager *game.SessionManager, signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Width  float64 `json:"width" binding:"required"`
			Height float64 `json:"height" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "width and height required"})
			return
		}
		if req.Width <= 0 || req.Height <= 0 || req.Width > maxViewport || req.Height > maxViewport {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viewport"})
			return
		}

		// Sessions outlive the request; the reaper or shutdown stops them.
		runner := manager.Create(context.Background(), game.Viewport{Width: req.Width, Height: req.Height})

		token, exp, err := signer.Sign(runner.ID())
		if err != nil {
			log.WithError(err).Error("[SESSION] failed to sign token")
			_ = manager.Stop(runner.ID())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		snap, err := runner.Snapshot(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id": runner.ID(),
			"token":      token,
			"expires_at": exp.Format(time.RFC3339),
			"balance":    snap.Balance,
			"profile":    snap.Profile,
			"rows":       snap.Rows,
			"canvas":     snap.Canvas,
		})
	}
}

// GetSession returns a snapshot of the caller's own session
func GetSession(manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id != c.GetString("session_id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "token does not match session"})
			return
		}

		runner, err := manager.Get(id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		snap, err := runner.Snapshot(c.Request.Context())
		if errors.Is(err, game.ErrRunnerStopped) {
			c.JSON(http.StatusGone, gin.H{"error": "session ended"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// EndSession stops the caller's session. Balls in flight are abandoned.
func EndSession(manager *game.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id != c.GetString("session_id") {
			c.JSON(http.StatusForbidden, gin.H{"error": "token does not match session"})
			return
		}
		if err := manager.Stop(id); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
