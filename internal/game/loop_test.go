package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	frames []Frame
	events []Event
}

func (r *recordingSink) Frame(f Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, f)
	r.mu.Unlock()
}

func (r *recordingSink) Events(events []Event) {
	r.mu.Lock()
	r.events = append(r.events, events...)
	r.mu.Unlock()
}

func (r *recordingSink) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

type recordingRecorder struct {
	landings []Landing
}

func (r *recordingRecorder) RecordLanding(l Landing) {
	r.landings = append(r.landings, l)
}

func TestRunnerFramesCarryPegsOnlyOnChange(t *testing.T) {
	s := newTestSession(DefaultRules(), newSeq(0.5))
	r := NewRunner(s, 60)
	sink := &recordingSink{}
	r.SetSink(sink)

	r.Tick(t0)
	r.Tick(t0.Add(16 * time.Millisecond))

	if len(sink.frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(sink.frames))
	}
	if len(sink.frames[0].Pegs) != PegCount(8) {
		t.Errorf("first frame: expected %d pegs, got %d", PegCount(8), len(sink.frames[0].Pegs))
	}
	if len(sink.frames[1].Pegs) != 0 {
		t.Errorf("second frame: expected no pegs, got %d", len(sink.frames[1].Pegs))
	}

	if err := r.Resize(context.Background(), Viewport{Width: 420, Height: 800}); err != nil {
		t.Fatal(err)
	}
	r.Tick(t0.Add(32 * time.Millisecond))

	last := sink.frames[2]
	if len(last.Pegs) != PegCount(8) {
		t.Errorf("after resize: expected pegs resent, got %d", len(last.Pegs))
	}
	if last.Pegs[0].Radius != MobileProfile.PegRadius {
		t.Errorf("after resize: expected mobile peg radius, got %v", last.Pegs[0].Radius)
	}
	if last.BoardVersion <= sink.frames[1].BoardVersion {
		t.Error("expected board version to advance on resize")
	}
}

func TestRunnerHeadlessDrop(t *testing.T) {
	s := newTestSession(DefaultRules(), newSeq(0.5, 0.5, 0.6))
	r := NewRunner(s, 60)
	sink := &recordingSink{}
	rec := &recordingRecorder{}
	r.SetSink(sink)
	r.SetRecorder(rec)

	ball, err := r.Drop(context.Background(), "300")
	if err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if sink.count(EventBallSpawned) != 1 || sink.count(EventBetApplied) != 1 {
		t.Error("expected spawn and bet events delivered on drop")
	}

	dropToLanding(s, ball)
	r.Tick(t0)

	if len(rec.landings) != 1 {
		t.Fatalf("expected 1 landing recorded, got %d", len(rec.landings))
	}
	if rec.landings[0].SessionID != s.ID || rec.landings[0].Multiplier != 2 {
		t.Errorf("unexpected landing %+v", rec.landings[0])
	}
	if sink.count(EventWin) != 1 {
		t.Error("expected win sound")
	}
	if got := sink.frames[len(sink.frames)-1].Balance; got != "$1300.00" {
		t.Errorf("expected frame balance $1300.00, got %s", got)
	}
}

func TestRunnerDropRejections(t *testing.T) {
	rules := DefaultRules()
	rules.InitialBalance = 250
	r := NewRunner(newTestSession(rules, newSeq(0.5)), 60)

	_, err := r.Drop(context.Background(), "300")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestRunnerRunLoop(t *testing.T) {
	s := newTestSession(DefaultRules(), newSeq(0.3, 0.7))
	r := NewRunner(s, 200)
	sink := &recordingSink{}
	r.SetSink(sink)

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)

	// Wait for the loop to accept commands.
	deadline := time.Now().Add(2 * time.Second)
	for {
		sink.mu.Lock()
		n := len(sink.frames)
		sink.mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, err := r.Drop(ctx, "300"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Ledger.Drops != 1 {
		t.Errorf("expected the drop reflected in the snapshot, got %d drops", snap.Ledger.Drops)
	}

	cancel()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}

	if _, err := r.Drop(context.Background(), "300"); !errors.Is(err, ErrRunnerStopped) {
		t.Errorf("expected ErrRunnerStopped after cancel, got %v", err)
	}
}
