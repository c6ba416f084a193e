package game

import (
	"math"
	"time"
)

// Ball is a falling entity. Its coefficients are fixed from the board profile
// at spawn; a later resize does not change them.
type Ball struct {
	ID        string    `json:"id"`
	Position  Vec2      `json:"position"`
	Velocity  Vec2      `json:"velocity"`
	Gravity   float64   `json:"-"`
	Friction  float64   `json:"-"`
	Bounce    float64   `json:"-"`
	Wager     int64     `json:"wager"`
	Scored    bool      `json:"scored"`
	SpawnedAt time.Time `json:"-"`

	// LastBounce is when the bounce sound last fired for this ball.
	LastBounce time.Time `json:"-"`

	// HitPegs records every peg the ball has struck. It is reporting state and
	// never gates a collision.
	HitPegs map[int]struct{} `json:"-"`

	// touching holds the pegs overlapped during the previous update.
	touching map[int]struct{}
}

// NewBall creates a ball at pos with the given initial velocity.
func NewBall(id string, pos, vel Vec2, profile Profile, wager int64, now time.Time) *Ball {
	return &Ball{
		ID:        id,
		Position:  pos,
		Velocity:  vel,
		Gravity:   profile.Gravity,
		Friction:  profile.Friction,
		Bounce:    profile.Bounce,
		Wager:     wager,
		SpawnedAt: now,
		HitPegs:   make(map[int]struct{}),
		touching:  make(map[int]struct{}),
	}
}

// Update advances the ball one tick against board: integrate, resolve every
// overlapping peg in order, then clamp against the side walls. Landing and
// exit are left to the caller. Returned events are bounce sounds.
func (b *Ball) Update(board *Board, now time.Time, suppressRepeat bool) []Event {
	var events []Event

	b.Velocity.Y += b.Gravity
	b.Position.X += b.Velocity.X
	b.Position.Y += b.Velocity.Y
	b.Velocity.X *= b.Friction

	reach := board.Profile.PegRadius + board.Profile.BallRadius
	touching := make(map[int]struct{}, len(b.touching))

	// Each peg is resolved against the position left by the previous one, so
	// a later peg can undo an earlier correction in the same tick.
	for _, peg := range board.Pegs {
		delta := b.Position.Minus(peg.Position)
		dist := delta.Magnitude()
		if dist >= reach {
			continue
		}

		touching[peg.ID] = struct{}{}
		if _, held := b.touching[peg.ID]; held && suppressRepeat {
			continue
		}
		b.HitPegs[peg.ID] = struct{}{}

		angle := delta.Angle()
		overlap := reach - dist
		b.Position = b.Position.Plus(FromAngle(angle, overlap))
		b.Velocity = FromAngle(angle, b.Bounce)

		if now.Sub(b.LastBounce) > BounceDebounce {
			b.LastBounce = now
			events = append(events, Event{Type: EventBounce, BallID: b.ID, PegID: intPtr(peg.ID)})
		}
	}
	b.touching = touching

	r := board.Profile.BallRadius
	if b.Position.X < r || b.Position.X > board.Canvas.Width-r {
		b.Velocity.X *= WallRestitution
		b.Position.X = math.Max(r, math.Min(board.Canvas.Width-r, b.Position.X))
	}

	return events
}

// BallView is the draw data for one ball.
type BallView struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
}

func (b *Ball) View(radius float64) BallView {
	return BallView{ID: b.ID, X: b.Position.X, Y: b.Position.Y, Radius: radius}
}
