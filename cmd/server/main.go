package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/api"
	"github.com/playmatatu/plinko/internal/auth"
	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/database"
	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/history"
	"github.com/playmatatu/plinko/internal/migrations"
	"github.com/playmatatu/plinko/internal/redis"
	"github.com/playmatatu/plinko/internal/ws"
)

func main() {
	// Initialize configuration (.env is loaded if present)
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	config.SetupLogging(cfg)

	rules, err := cfg.Rules()
	if err != nil {
		log.WithError(err).Fatal("Failed to load game rules")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps := api.Deps{Config: cfg}

	// Round ledger (optional)
	var store history.RoundStore
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		if cfg.MigrateOnStart {
			log.Info("[MIGRATE] Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
				log.WithError(err).Fatal("Failed to run migrations")
			}
		}

		s := history.NewStore(db)
		store = s
		deps.Rounds = s
	} else {
		log.Info("[HISTORY] DATABASE_URL not set; round ledger disabled")
	}

	// Live feed (optional)
	var rdb *goredis.Client
	var publisher history.Publisher
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer rdb.Close()
		publisher = history.NewFeed(rdb, redis.EventsChannel)
	}

	hub := ws.NewHub(cfg.BigWinMultiplier)
	go hub.Run(ctx)
	ws.StartLandingSubscriber(ctx, rdb, hub)

	recorder := history.NewRecorder(store, publisher, hub.RelayLanding)
	recCtx, stopRecorder := context.WithCancel(context.Background())
	go recorder.Run(recCtx)

	manager := game.NewSessionManager(rules, cfg.TickRateHz, recorder)
	maxIdle := time.Duration(cfg.SessionTimeoutMin) * time.Minute
	reaper := game.NewReaper(manager, maxIdle)
	if err := reaper.Start(time.Minute); err != nil {
		log.WithError(err).Fatal("Failed to start session reaper")
	}

	deps.Manager = manager
	deps.Hub = hub
	deps.Signer = auth.NewSigner(cfg.JWTSecret, maxIdle*4)

	// Set up Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting Plinko server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("Received %s, shutting down...", sig)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown")
	}

	reaper.Stop()
	manager.Shutdown()
	cancel()

	// Sessions are stopped, so no more landings arrive; flush the rest.
	stopRecorder()
	<-recorder.Done()
	log.Info("Server stopped")
}
