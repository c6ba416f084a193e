package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/models"
)

// Feed publishes landings on a redis channel so every server instance can
// relay them.
type Feed struct {
	rdb     *redis.Client
	channel string
}

func NewFeed(rdb *redis.Client, channel string) *Feed {
	return &Feed{rdb: rdb, channel: channel}
}

func (f *Feed) Publish(ctx context.Context, ev models.LandingEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal landing event: %w", err)
	}
	if err := f.rdb.Publish(ctx, f.channel, data).Err(); err != nil {
		return fmt.Errorf("publish landing event: %w", err)
	}
	return nil
}

// Subscribe delivers every landing published on the channel to handle until
// ctx is cancelled.
func (f *Feed) Subscribe(ctx context.Context, handle func(models.LandingEvent)) {
	pubsub := f.rdb.Subscribe(ctx, f.channel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Infof("[HISTORY] %s subscriber started", f.channel)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.LandingEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Warnf("[HISTORY] invalid event payload: %v", err)
					continue
				}
				handle(ev)
			}
		}
	}()
}
