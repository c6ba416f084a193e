package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestManager() *SessionManager {
	m := NewSessionManager(DefaultRules(), 120, nil)
	m.newSource = func() RandomSource { return newSeq(0.4, 0.6) }
	return m
}

func TestSessionManagerLifecycle(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	r := m.Create(ctx, desktopViewport)
	if m.Count() != 1 {
		t.Fatalf("expected 1 session, got %d", m.Count())
	}

	got, err := m.Get(r.ID())
	if err != nil || got != r {
		t.Fatalf("Get: expected runner back, got %v, %v", got, err)
	}

	if err := m.Stop(r.ID()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if _, err := m.Get(r.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after stop, got %v", err)
	}
	if err := m.Stop(r.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on second stop, got %v", err)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	m := newTestManager()
	defer m.Shutdown()
	ctx := context.Background()

	a := m.Create(ctx, desktopViewport)
	b := m.Create(ctx, desktopViewport)

	if _, err := a.Drop(ctx, "500"); err != nil {
		t.Fatalf("Drop: %v", err)
	}

	snapA, err := a.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	snapB, err := b.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if snapA.Ledger.Drops != 1 || snapB.Ledger.Drops != 0 {
		t.Errorf("drop leaked across sessions: a=%d b=%d", snapA.Ledger.Drops, snapB.Ledger.Drops)
	}
	if snapB.Balance != "$1000.00" {
		t.Errorf("expected untouched session at $1000.00, got %s", snapB.Balance)
	}
}

func TestReapIdle(t *testing.T) {
	m := newTestManager()
	defer m.Shutdown()
	ctx := context.Background()

	stale := m.Create(ctx, desktopViewport)
	fresh := m.Create(ctx, desktopViewport)

	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-time.Hour)
	stale.mu.Unlock()
	fresh.Touch()

	if n := m.ReapIdle(10 * time.Minute); n != 1 {
		t.Fatalf("expected 1 reaped, got %d", n)
	}
	if _, err := m.Get(stale.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Error("stale session still registered")
	}
	if _, err := m.Get(fresh.ID()); err != nil {
		t.Error("fresh session was reaped")
	}
	select {
	case <-stale.Done():
	default:
		t.Error("stale runner still running")
	}
}

func TestShutdownStopsEverything(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	runners := []*Runner{m.Create(ctx, desktopViewport), m.Create(ctx, desktopViewport)}

	m.Shutdown()

	if m.Count() != 0 {
		t.Errorf("expected no sessions, got %d", m.Count())
	}
	for _, r := range runners {
		select {
		case <-r.Done():
		case <-time.After(time.Second):
			t.Error("runner still running after shutdown")
		}
	}
}
