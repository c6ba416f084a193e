package game

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Reaper periodically stops sessions whose client went quiet.
type Reaper struct {
	cron    *cron.Cron
	manager *SessionManager
	maxIdle time.Duration
}

func NewReaper(manager *SessionManager, maxIdle time.Duration) *Reaper {
	return &Reaper{
		cron:    cron.New(),
		manager: manager,
		maxIdle: maxIdle,
	}
}

// Start schedules the sweep every interval.
func (r *Reaper) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := r.cron.AddFunc(spec, r.sweep); err != nil {
		return fmt.Errorf("schedule idle reaper: %w", err)
	}
	r.cron.Start()
	log.WithFields(log.Fields{
		"interval": interval.String(),
		"max_idle": r.maxIdle.String(),
	}).Info("[REAPER] idle session reaper started")
	return nil
}

func (r *Reaper) sweep() {
	if n := r.manager.ReapIdle(r.maxIdle); n > 0 {
		log.WithFields(log.Fields{
			"reaped": n,
			"live":   r.manager.Count(),
		}).Info("[REAPER] stopped idle sessions")
	}
}

// Stop waits for a running sweep to finish.
func (r *Reaper) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	log.Info("[REAPER] idle session reaper stopped")
}
