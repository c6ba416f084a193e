package game

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestMultiplierBoundaries(t *testing.T) {
	tests := []struct {
		r    float64
		want float64
	}{
		{0, 1.2},
		{0.2999, 1.2},
		{0.30, 1.6},
		{0.5499, 1.6},
		{0.55, 2},
		{0.8999, 2},
		{0.90, 4},
		{0.9299, 4},
		{0.93, 6},
		{0.97, 9},
		{0.985, 27},
		{0.9959, 27},
		{0.996, 100},
		{0.9989, 100},
		{0.999, 1000},
		{0.9999, 1000},
		{math.Nextafter(1, 0), 1000},
	}
	for _, tt := range tests {
		if got := Multiplier(tt.r); got != tt.want {
			t.Errorf("Multiplier(%v): expected %v, got %v", tt.r, tt.want, got)
		}
	}
}

func TestMultiplierAlwaysInTable(t *testing.T) {
	valid := map[float64]bool{}
	for _, tier := range RewardTable {
		valid[tier.Multiplier] = true
	}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100000; i++ {
		m := DrawMultiplier(rng)
		if !valid[m] {
			t.Fatalf("draw produced %v which is not in the table", m)
		}
		if m <= 1 {
			t.Fatalf("draw produced non-winning multiplier %v", m)
		}
	}
}

func TestRewardTableIsCumulative(t *testing.T) {
	prev := 0.0
	for i, tier := range RewardTable {
		if tier.Upper <= prev {
			t.Errorf("tier %d upper %v not above previous %v", i, tier.Upper, prev)
		}
		prev = tier.Upper
	}
	if prev != 1 {
		t.Errorf("last tier must end at 1, got %v", prev)
	}
}

func TestExpectedMultiplier(t *testing.T) {
	// 0.30*1.2 + 0.25*1.6 + 0.35*2 + 0.03*4 + 0.04*6 + 0.015*9 + 0.011*27 + 0.003*100 + 0.001*1000
	want := 0.36 + 0.4 + 0.7 + 0.12 + 0.24 + 0.135 + 0.297 + 0.3 + 1.0
	if got := ExpectedMultiplier(); math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
}
