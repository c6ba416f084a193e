// Package sim drives a session headlessly on a simulated clock.
package sim

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/playmatatu/plinko/internal/game"
)

type Options struct {
	Drops    int
	Seed     uint64
	Viewport game.Viewport
	Bet      string
	TickRate int
	Rules    game.Rules
}

type Report struct {
	Drops        int
	Landed       int
	Lost         int
	Ticks        int
	Wagered      decimal.Decimal
	Credited     decimal.Decimal
	Balance      string
	Bust         bool
	Slots        []int
	Multipliers  map[float64]int
	Profile      string
	Rows         int
	ReconcileErr error
}

// RTP is credited over wagered, or zero when nothing was wagered.
func (r Report) RTP() float64 {
	if r.Wagered.IsZero() {
		return 0
	}
	rtp, _ := r.Credited.Div(r.Wagered).Float64()
	return rtp
}

type landingCounter struct {
	slots       []int
	multipliers map[float64]int
}

func (c *landingCounter) RecordLanding(l game.Landing) {
	if l.Slot >= 0 && l.Slot < len(c.slots) {
		c.slots[l.Slot]++
	}
	c.multipliers[l.Multiplier]++
}

// maxTicksPerDrop bounds the run in case a ball never leaves the board.
const maxTicksPerDrop = 5000

// Run drops opts.Drops balls, admitting a new one whenever the table has
// room, and ticks until every ball has resolved or the balance cannot cover
// another drop.
func Run(opts Options) Report {
	if opts.TickRate <= 0 {
		opts.TickRate = game.DefaultTickRate
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := game.NewSession("", opts.Viewport, opts.Rules, rng, start)

	counter := &landingCounter{
		slots:       make([]int, opts.Rules.SlotCount),
		multipliers: make(map[float64]int),
	}
	r := game.NewRunner(s, opts.TickRate)
	r.SetRecorder(counter)

	step := time.Second / time.Duration(opts.TickRate)
	now := start
	r.SetClock(func() time.Time { return now })
	ctx := context.Background()

	report := Report{Profile: s.Board().Profile.Name, Rows: s.Board().Rows}
	dropped := 0
	limit := (opts.Drops + 1) * maxTicksPerDrop
	for report.Ticks < limit {
		for dropped < opts.Drops && s.ActiveBalls() < opts.Rules.MaxActiveBalls {
			// Refusals leave the loop; an empty table then means bust.
			if _, err := r.Drop(ctx, opts.Bet); err != nil {
				break
			}
			dropped++
		}
		if s.ActiveBalls() == 0 {
			if dropped >= opts.Drops {
				break
			}
			// Nothing in flight and no drop admitted: the balance is spent.
			report.Bust = true
			break
		}
		now = now.Add(step)
		r.Tick(now)
		report.Ticks++
	}

	ledger := s.Ledger()
	report.Drops = ledger.Drops
	report.Landed = ledger.Landings
	report.Lost = ledger.Lost
	report.Wagered = ledger.Wagered
	report.Credited = ledger.Credited
	report.Balance = s.FormattedBalance()
	report.Slots = counter.slots
	report.Multipliers = counter.multipliers
	report.ReconcileErr = s.Reconcile()
	return report
}

// Print writes a human readable summary of r.
func Print(w io.Writer, r Report) {
	fmt.Fprintf(w, "board:      %s, %d rows\n", r.Profile, r.Rows)
	fmt.Fprintf(w, "drops:      %d (landed %d, lost %d)\n", r.Drops, r.Landed, r.Lost)
	fmt.Fprintf(w, "ticks:      %d\n", r.Ticks)
	fmt.Fprintf(w, "wagered:    %s\n", r.Wagered.StringFixed(2))
	fmt.Fprintf(w, "credited:   %s\n", r.Credited.StringFixed(2))
	fmt.Fprintf(w, "balance:    %s\n", r.Balance)
	fmt.Fprintf(w, "rtp:        %.4f (table expects %.4f)\n", r.RTP(), game.ExpectedMultiplier())
	if r.Bust {
		fmt.Fprintln(w, "stopped:    balance below the minimum bet")
	}
	if r.ReconcileErr != nil {
		fmt.Fprintf(w, "RECONCILE:  %v\n", r.ReconcileErr)
	}

	fmt.Fprintln(w, "\nslots:")
	for i, n := range r.Slots {
		fmt.Fprintf(w, "  %d  %6d  %s\n", i, n, bar(n, r.Landed))
	}

	fmt.Fprintln(w, "\nmultipliers:")
	keys := make([]float64, 0, len(r.Multipliers))
	for m := range r.Multipliers {
		keys = append(keys, m)
	}
	sort.Float64s(keys)
	for _, m := range keys {
		n := r.Multipliers[m]
		label := strconv.FormatFloat(m, 'f', -1, 64) + "x"
		fmt.Fprintf(w, "  %6s  %6d  %s\n", label, n, bar(n, r.Landed))
	}
}

func bar(n, total int) string {
	if total == 0 {
		return ""
	}
	width := n * 40 / total
	b := make([]byte, width)
	for i := range b {
		b[i] = '#'
	}
	return string(b)
}
