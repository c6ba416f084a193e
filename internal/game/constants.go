package game

import "time"

// Board and round constants. Physics values are tuned against the fixed-speed
// peg bounce; changing them shifts the landing distribution.
const (
	MinBet         = 300
	InitialBalance = 1000
	MaxActiveBalls = 10
	SlotCount      = 7

	MaxCanvasWidth     = 1200.0
	CanvasHeightFactor = 0.7
	MobileBreakpoint   = 600.0

	// A viewport below either bound loses its last peg row.
	CompactHeight = 600.0
	CompactWidth  = 350.0

	FullRows       = 8
	StartCols      = 3
	RowTopMargin   = 50.0
	MobileRowShift = 10.0

	Friction        = 0.98
	WallRestitution = -0.8

	SpawnY         = 10.0
	SpawnJitter    = 40.0
	SpawnVelocityY = 2.0

	// Landing line sits LandingMargin above the canvas bottom; balls past
	// OutOfBoundsMargin below it are dropped without payout.
	LandingMargin     = 50.0
	OutOfBoundsMargin = 100.0

	BounceDebounce  = 100 * time.Millisecond
	SlotDisplayTime = 1000 * time.Millisecond

	DefaultTickRate = 60
)

// Profile holds the size-class dependent constants chosen from the viewport.
type Profile struct {
	Name       string  `json:"name" yaml:"name"`
	PegRadius  float64 `json:"peg_radius" yaml:"peg_radius"`
	BallRadius float64 `json:"ball_radius" yaml:"ball_radius"`
	PegSpacing float64 `json:"peg_spacing" yaml:"peg_spacing"`
	Gravity    float64 `json:"gravity" yaml:"gravity"`
	Bounce     float64 `json:"bounce" yaml:"bounce"`
	Friction   float64 `json:"friction" yaml:"friction"`
}

var (
	MobileProfile = Profile{
		Name:       "mobile",
		PegRadius:  8,
		BallRadius: 6,
		PegSpacing: 45,
		Gravity:    0.10,
		Bounce:     1.6,
		Friction:   Friction,
	}

	DesktopProfile = Profile{
		Name:       "desktop",
		PegRadius:  10,
		BallRadius: 8,
		PegSpacing: 80,
		Gravity:    0.45,
		Bounce:     1.3,
		Friction:   Friction,
	}
)

// Rules are the per-session knobs. The zero value is not usable; start from
// DefaultRules.
type Rules struct {
	InitialBalance int64
	MinBet         int64
	MaxActiveBalls int
	SlotCount      int

	// SuppressRepeatHits skips a peg the ball was already overlapping on the
	// previous tick instead of re-resolving against it.
	SuppressRepeatHits bool

	// PayoutOnBallWager pays a landing against the wager taken when that ball
	// spawned rather than the session's current bet.
	PayoutOnBallWager bool

	Mobile  Profile
	Desktop Profile
}

func DefaultRules() Rules {
	return Rules{
		InitialBalance: InitialBalance,
		MinBet:         MinBet,
		MaxActiveBalls: MaxActiveBalls,
		SlotCount:      SlotCount,
		Mobile:         MobileProfile,
		Desktop:        DesktopProfile,
	}
}
