package ws

import (
	"context"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/history"
	redisconn "github.com/playmatatu/plinko/internal/redis"
)

// StartLandingSubscriber relays landings published by any instance to the
// hub's clients. Without redis the recorder hands landings to the hub
// directly and this is a no-op.
func StartLandingSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub) {
	if rdb == nil {
		log.Info("[WS] Redis client not set; landing subscriber not started")
		return
	}
	history.NewFeed(rdb, redisconn.EventsChannel).Subscribe(ctx, hub.RelayLanding)
}
