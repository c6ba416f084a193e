package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionManager owns every live Runner. Sessions are independent: each has
// its own balance, board and random source, and none is ever shared between
// connections.
type SessionManager struct {
	rules    Rules
	tickRate int
	recorder LandingRecorder

	runners map[string]*managedRunner
	mu      sync.RWMutex

	// newSource is swapped in tests for deterministic draws.
	newSource func() RandomSource
}

type managedRunner struct {
	runner *Runner
	cancel context.CancelFunc
}

// NewSessionManager creates a manager. recorder may be nil.
func NewSessionManager(rules Rules, tickRate int, recorder LandingRecorder) *SessionManager {
	return &SessionManager{
		rules:     rules,
		tickRate:  tickRate,
		recorder:  recorder,
		runners:   make(map[string]*managedRunner),
		newSource: seededSource,
	}
}

func seededSource() RandomSource {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func (m *SessionManager) Rules() Rules { return m.rules }

// Create starts a new session for vp and its simulation loop. The loop lives
// until Stop, the reaper, or cancellation of ctx.
func (m *SessionManager) Create(ctx context.Context, vp Viewport) *Runner {
	s := NewSession(uuid.NewString(), vp, m.rules, m.newSource(), time.Now())
	r := NewRunner(s, m.tickRate)
	if m.recorder != nil {
		r.SetRecorder(m.recorder)
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.runners[s.ID] = &managedRunner{runner: r, cancel: cancel}
	m.mu.Unlock()

	go r.Run(runCtx)

	log.WithFields(log.Fields{
		"session": s.ID,
		"profile": s.Board().Profile.Name,
		"rows":    s.Board().Rows,
	}).Info("[SESSION] created")
	return r
}

// Get returns the runner for id.
func (m *SessionManager) Get(id string) (*Runner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mr, ok := m.runners[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return mr.runner, nil
}

// Stop ends a session's loop and forgets it. Balls still in flight are
// abandoned with the session.
func (m *SessionManager) Stop(id string) error {
	m.mu.Lock()
	mr, ok := m.runners[id]
	if ok {
		delete(m.runners, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	mr.cancel()
	<-mr.runner.Done()
	log.WithField("session", id).Info("[SESSION] stopped")
	return nil
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runners)
}

// ReapIdle stops every session not touched within maxIdle and returns how many
// were stopped.
func (m *SessionManager) ReapIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.RLock()
	var idle []string
	for id, mr := range m.runners {
		if mr.runner.LastActive().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	m.mu.RUnlock()

	reaped := 0
	for _, id := range idle {
		if err := m.Stop(id); err == nil {
			reaped++
		}
	}
	return reaped
}

// Shutdown stops every session.
func (m *SessionManager) Shutdown() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.runners))
	for id := range m.runners {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		_ = m.Stop(id)
	}
}
