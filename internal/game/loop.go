package game

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrRunnerStopped = errors.New("simulation stopped")

// PegView is the draw data for one peg.
type PegView struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
}

// Frame is what the renderer needs for one frame. Pegs is only populated when
// the board changed since the previous frame.
type Frame struct {
	Tick         uint64     `json:"tick"`
	BoardVersion int        `json:"board_version"`
	Canvas       Canvas     `json:"canvas"`
	Pegs         []PegView  `json:"pegs,omitempty"`
	Balls        []BallView `json:"balls"`
	Balance      string     `json:"balance"`
}

// Sink receives the output of every tick. Implementations must not block: they
// are called on the simulation goroutine.
type Sink interface {
	Frame(f Frame)
	Events(events []Event)
}

// LandingRecorder is notified of every scored ball. Called on the simulation
// goroutine, so it must hand off rather than do I/O inline.
type LandingRecorder interface {
	RecordLanding(l Landing)
}

// Runner drives one Session from a ticker. Every mutation of the session runs
// on the Runner's goroutine, so the session needs no locks.
type Runner struct {
	session  *Session
	interval time.Duration
	clock    func() time.Time

	cmds chan func(*Session, time.Time)
	done chan struct{}

	mu           sync.Mutex
	sink         Sink
	recorder     LandingRecorder
	lastActive   time.Time
	tick         uint64
	boardVersion int
	sentVersion  int
	running      bool
}

// NewRunner wraps s in a loop ticking tickRate times per second.
func NewRunner(s *Session, tickRate int) *Runner {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Runner{
		session:      s,
		interval:     time.Second / time.Duration(tickRate),
		clock:        time.Now,
		cmds:         make(chan func(*Session, time.Time), 16),
		done:         make(chan struct{}),
		lastActive:   time.Now(),
		boardVersion: 1,
	}
}

func (r *Runner) ID() string { return r.session.ID }

// SetClock replaces the time source used for commands. Headless drivers that
// tick on a simulated clock set it before the first command.
func (r *Runner) SetClock(clock func() time.Time) {
	r.mu.Lock()
	r.clock = clock
	r.mu.Unlock()
}

// SetSink replaces the output sink. A nil sink discards output.
func (r *Runner) SetSink(s Sink) {
	r.mu.Lock()
	r.sink = s
	// A new sink has never seen the pegs.
	r.sentVersion = 0
	r.mu.Unlock()
}

// ReleaseSink clears the sink only if it is still s, so a connection closing
// late does not detach its replacement.
func (r *Runner) ReleaseSink(s Sink) {
	r.mu.Lock()
	if r.sink == s {
		r.sink = nil
	}
	r.mu.Unlock()
}

func (r *Runner) SetRecorder(rec LandingRecorder) {
	r.mu.Lock()
	r.recorder = rec
	r.mu.Unlock()
}

// Touch marks the session as used by a client.
func (r *Runner) Touch() {
	r.mu.Lock()
	r.lastActive = r.clock()
	r.mu.Unlock()
}

func (r *Runner) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// Done is closed once Run returns.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Run ticks the session until ctx is cancelled. It must be called once.
func (r *Runner) Run(ctx context.Context) {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.WithField("session", r.session.ID).Debug("[SESSION] simulation loop started")
	for {
		select {
		case <-ctx.Done():
			log.WithField("session", r.session.ID).Debug("[SESSION] simulation loop stopped")
			return
		case cmd := <-r.cmds:
			cmd(r.session, r.clock())
			r.flushEvents()
		case <-ticker.C:
			r.Tick(r.clock())
		}
	}
}

// Tick runs one simulation step and publishes its frame and events. Run calls
// it from the ticker; headless drivers may call it directly instead of Run.
func (r *Runner) Tick(now time.Time) {
	r.session.Step(now)
	r.tick++
	r.flushEvents()

	r.mu.Lock()
	sink := r.sink
	includePegs := r.sentVersion != r.boardVersion
	if sink != nil {
		r.sentVersion = r.boardVersion
	}
	r.mu.Unlock()

	if sink != nil {
		sink.Frame(r.frame(includePegs))
	}
}

func (r *Runner) flushEvents() {
	events := r.session.DrainEvents()
	landings := r.session.DrainLandings()

	r.mu.Lock()
	sink, recorder := r.sink, r.recorder
	for _, e := range events {
		if e.Type == EventBoardBuilt {
			r.boardVersion++
		}
	}
	r.mu.Unlock()

	if recorder != nil {
		for _, l := range landings {
			recorder.RecordLanding(l)
		}
	}
	if sink != nil && len(events) > 0 {
		sink.Events(events)
	}
}

func (r *Runner) frame(includePegs bool) Frame {
	s := r.session
	board := s.Board()
	f := Frame{
		Tick:         r.tick,
		BoardVersion: r.boardVersion,
		Canvas:       board.Canvas,
		Balls:        make([]BallView, 0, s.ActiveBalls()),
		Balance:      s.FormattedBalance(),
	}
	if includePegs {
		f.Pegs = make([]PegView, len(board.Pegs))
		for i, p := range board.Pegs {
			f.Pegs[i] = PegView{X: p.Position.X, Y: p.Position.Y, Radius: board.Profile.PegRadius}
		}
	}
	for _, b := range s.Balls() {
		f.Balls = append(f.Balls, b.View(board.Profile.BallRadius))
	}
	return f
}

// Do runs fn on the simulation goroutine and waits for it. If the loop is not
// running fn runs inline, which is how headless drivers use a Runner.
func (r *Runner) Do(ctx context.Context, fn func(s *Session, now time.Time)) error {
	r.mu.Lock()
	running := r.running
	r.mu.Unlock()

	if !running {
		fn(r.session, r.clock())
		r.flushEvents()
		return nil
	}

	finished := make(chan struct{})
	wrapped := func(s *Session, now time.Time) {
		fn(s, now)
		close(finished)
	}

	select {
	case r.cmds <- wrapped:
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drop places a wager on the simulation goroutine.
func (r *Runner) Drop(ctx context.Context, bet string) (*Ball, error) {
	var ball *Ball
	var dropErr error
	err := r.Do(ctx, func(s *Session, now time.Time) {
		ball, dropErr = s.PlaceWager(bet, now)
	})
	if err != nil {
		return nil, err
	}
	return ball, dropErr
}

// Resize rebuilds the board on the simulation goroutine.
func (r *Runner) Resize(ctx context.Context, vp Viewport) error {
	return r.Do(ctx, func(s *Session, _ time.Time) {
		s.Resize(vp)
	})
}

// Snapshot reads the session on the simulation goroutine.
func (r *Runner) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.Do(ctx, func(s *Session, _ time.Time) {
		snap = s.Snapshot()
	})
	return snap, err
}
