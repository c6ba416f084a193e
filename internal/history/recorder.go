package history

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/game"
	"github.com/playmatatu/plinko/internal/models"
)

const queueSize = 1024

// RoundStore is the subset of Store the recorder writes to.
type RoundStore interface {
	InsertRound(ctx context.Context, r *models.Round) error
}

// Publisher is the subset of Feed the recorder publishes to.
type Publisher interface {
	Publish(ctx context.Context, ev models.LandingEvent) error
}

// Recorder takes landings off the simulation goroutines and writes them out
// on its own worker. Either sink may be nil. When there is no publisher,
// events go to the local handler instead so a single instance still sees its
// own landings.
type Recorder struct {
	store   RoundStore
	pub     Publisher
	local   func(models.LandingEvent)
	queue   chan game.Landing
	dropped atomic.Int64
	done    chan struct{}
}

func NewRecorder(store RoundStore, pub Publisher, local func(models.LandingEvent)) *Recorder {
	return &Recorder{
		store: store,
		pub:   pub,
		local: local,
		queue: make(chan game.Landing, queueSize),
		done:  make(chan struct{}),
	}
}

// RecordLanding queues l. It never blocks; landings are dropped when the
// queue is full.
func (r *Recorder) RecordLanding(l game.Landing) {
	select {
	case r.queue <- l:
	default:
		if n := r.dropped.Add(1); n == 1 || n%100 == 0 {
			log.WithField("dropped", n).Warn("[HISTORY] queue full, dropping landings")
		}
	}
}

// Dropped reports how many landings were discarded.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Run drains the queue until ctx is cancelled, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case l := <-r.queue:
			r.write(ctx, l)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			for {
				select {
				case l := <-r.queue:
					r.write(flushCtx, l)
				default:
					cancel()
					return
				}
			}
		}
	}
}

// Done is closed once Run has flushed and returned.
func (r *Recorder) Done() <-chan struct{} { return r.done }

func (r *Recorder) write(ctx context.Context, l game.Landing) {
	if r.store != nil {
		round := RoundFromLanding(l)
		if err := r.store.InsertRound(ctx, &round); err != nil {
			log.WithError(err).WithField("session", l.SessionID).Error("[HISTORY] failed to store round")
		}
	}

	ev := EventFromLanding(l)
	if r.pub != nil {
		if err := r.pub.Publish(ctx, ev); err != nil {
			log.WithError(err).Warn("[HISTORY] failed to publish landing")
		}
		return
	}
	if r.local != nil {
		r.local(ev)
	}
}

func RoundFromLanding(l game.Landing) models.Round {
	return models.Round{
		SessionID:    l.SessionID,
		BallID:       l.BallID,
		Slot:         l.Slot,
		Multiplier:   decimal.NewFromFloat(l.Multiplier),
		Wager:        l.Wager,
		WinAmount:    l.WinAmount,
		BalanceAfter: l.Balance,
		LandedAt:     l.LandedAt,
	}
}

func EventFromLanding(l game.Landing) models.LandingEvent {
	return models.LandingEvent{
		Type:       "landing",
		SessionID:  l.SessionID,
		BallID:     l.BallID,
		Slot:       l.Slot,
		Multiplier: l.Multiplier,
		Wager:      l.Wager,
		WinAmount:  l.WinAmount.String(),
		LandedAt:   l.LandedAt.UnixMilli(),
	}
}
