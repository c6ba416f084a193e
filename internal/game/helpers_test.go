package game

import (
	"math"
	"time"
)

// seqSource replays a fixed list of draws, wrapping around at the end.
type seqSource struct {
	vals []float64
	i    int
}

func newSeq(vals ...float64) *seqSource {
	return &seqSource{vals: vals}
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

// testBoard builds a desktop-profile board with explicit pegs.
func testBoard(width float64, pegs ...Vec2) *Board {
	b := &Board{
		Canvas:  Canvas{Width: width, Height: 1000},
		Profile: DesktopProfile,
	}
	for i, p := range pegs {
		b.Pegs = append(b.Pegs, Peg{ID: i, Position: p})
	}
	return b
}

// stillBall is a ball with no gravity or friction so positions only change
// through collisions and walls.
func stillBall(x, y float64) *Ball {
	p := DesktopProfile
	p.Gravity = 0
	p.Friction = 1
	return NewBall("b", NewVec2(x, y), Vec2{}, p, MinBet, time.Time{})
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

var (
	desktopViewport = Viewport{Width: 1024, Height: 900}
	t0              = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
)
