package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/playmatatu/plinko/internal/game"
)

func desktopOptions(drops int, seed uint64) Options {
	rules := game.DefaultRules()
	rules.InitialBalance = 1_000_000
	return Options{
		Drops:    drops,
		Seed:     seed,
		Viewport: game.Viewport{Width: 1024, Height: 900},
		Bet:      "300",
		Rules:    rules,
	}
}

func TestRunResolvesDrops(t *testing.T) {
	r := Run(desktopOptions(50, 1))

	if r.Drops != 50 {
		t.Fatalf("expected 50 drops, got %d", r.Drops)
	}
	if r.Landed+r.Lost > r.Drops || r.Landed < 45 {
		t.Errorf("expected nearly every ball to land: landed %d lost %d", r.Landed, r.Lost)
	}
	if r.ReconcileErr != nil {
		t.Errorf("ledger does not reconcile: %v", r.ReconcileErr)
	}

	slots, mults := 0, 0
	for _, n := range r.Slots {
		slots += n
	}
	for _, n := range r.Multipliers {
		mults += n
	}
	if slots != r.Landed || mults != r.Landed {
		t.Errorf("histograms (%d slots, %d multipliers) disagree with %d landings", slots, mults, r.Landed)
	}
	if r.RTP() < 1 {
		t.Errorf("every tier pays above 1x, expected RTP >= 1, got %v", r.RTP())
	}
}

func TestRunIsDeterministic(t *testing.T) {
	a := Run(desktopOptions(20, 42))
	b := Run(desktopOptions(20, 42))
	if a.Balance != b.Balance || a.Ticks != b.Ticks {
		t.Errorf("same seed diverged: %s/%d vs %s/%d", a.Balance, a.Ticks, b.Balance, b.Ticks)
	}
}

func TestRunStopsWhenBust(t *testing.T) {
	opts := desktopOptions(10, 1)
	opts.Rules.InitialBalance = 100

	r := Run(opts)
	if !r.Bust || r.Drops != 0 {
		t.Errorf("expected bust with no drops, got bust=%v drops=%d", r.Bust, r.Drops)
	}
	if r.Balance != "$100.00" {
		t.Errorf("expected balance untouched, got %s", r.Balance)
	}
}

func TestRunMobileBoard(t *testing.T) {
	opts := desktopOptions(5, 3)
	opts.Viewport = game.Viewport{Width: 320, Height: 480}

	r := Run(opts)
	if r.Profile != "mobile" || r.Rows != 7 {
		t.Errorf("expected compact mobile board, got %s with %d rows", r.Profile, r.Rows)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, Run(desktopOptions(10, 9)))

	out := buf.String()
	for _, want := range []string{"board:", "rtp:", "slots:", "multipliers:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRTPWithoutWagers(t *testing.T) {
	if got := (Report{}).RTP(); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
