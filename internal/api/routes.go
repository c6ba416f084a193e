package api

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/api/handlers"
	"github.com/playmatatu/plinko/internal/auth"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/middleware"
	"github.com/playmatatu/plinko/internal/ws"
)

// Deps are the services the routes are wired to. Rounds is nil when no
// database is configured.
type Deps struct {
	Config  *config.Config
	Manager *game.SessionManager
	Hub     *ws.Hub
	Signer  *auth.Signer
	Rounds  handlers.RoundReader
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	router.Use(middleware.CORSMiddleware(d.Config))

	if !d.Config.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
		log.Info("[DEV MODE] no-cache headers enabled for all routes")
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Manager))
		v1.GET("/config", handlers.GetConfig(d.Manager.Rules()))

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(d.Manager, d.Signer))
			sessions.GET("/ws", middleware.WebSocketCORSCheck(d.Config), d.Signer.Middleware(), handlers.HandleSessionWebSocket(d.Hub, d.Manager))
			sessions.GET("/:id", d.Signer.Middleware(), handlers.GetSession(d.Manager))
			sessions.DELETE("/:id", d.Signer.Middleware(), handlers.EndSession(d.Manager))
		}

		v1.GET("/rounds/recent", handlers.GetRecentRounds(d.Rounds))
	}
}
