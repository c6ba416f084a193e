package game

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCapacityExceeded    = errors.New("too many balls in play, please wait")
)

// SlotDisplay is the transient "last multiplier" shown under a slot.
type SlotDisplay struct {
	Text      string    `json:"text"`
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"-"`
}

// Ledger accumulates every balance movement of a session.
type Ledger struct {
	Wagered  decimal.Decimal `json:"wagered"`
	Credited decimal.Decimal `json:"credited"`
	Drops    int             `json:"drops"`
	Landings int             `json:"landings"`
	Lost     int             `json:"lost"`
}

// Landing describes a scored ball.
type Landing struct {
	SessionID  string          `json:"session_id"`
	BallID     string          `json:"ball_id"`
	Slot       int             `json:"slot"`
	Multiplier float64         `json:"multiplier"`
	Wager      int64           `json:"wager"`
	WinAmount  decimal.Decimal `json:"win_amount"`
	Balance    decimal.Decimal `json:"balance"`
	LandedAt   time.Time       `json:"landed_at"`
}

// Session owns the wager, the balance and every ball in flight. It is not safe
// for concurrent use; a Runner serializes all access onto one goroutine.
type Session struct {
	ID        string
	CreatedAt time.Time

	rules      Rules
	rng        RandomSource
	board      *Board
	balance    decimal.Decimal
	currentBet int64
	balls      []*Ball
	slots      []SlotDisplay
	ledger     Ledger
	pending    []Event
	landings   []Landing
}

// NewSession starts a session with the configured initial balance and a board
// built for vp.
func NewSession(id string, vp Viewport, rules Rules, rng RandomSource, now time.Time) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{
		ID:         id,
		CreatedAt:  now,
		rules:      rules,
		rng:        rng,
		balance:    decimal.NewFromInt(rules.InitialBalance),
		currentBet: rules.MinBet,
		slots:      make([]SlotDisplay, rules.SlotCount),
		ledger: Ledger{
			Wagered:  decimal.Zero,
			Credited: decimal.Zero,
		},
	}
	s.Resize(vp)
	return s
}

// Resize rebuilds the board for a new viewport and clears the slot displays.
// Balls in flight keep their positions and coefficients.
func (s *Session) Resize(vp Viewport) {
	s.board = BuildBoard(vp, s.rules)
	for i := range s.slots {
		s.slots[i] = SlotDisplay{}
	}
	s.emit(Event{Type: EventBoardBuilt, Text: s.board.Profile.Name})
}

// ParseWager reads a leading integer the way a browser's parseInt does:
// optional whitespace, optional sign, then digits; anything after is ignored.
// ok is false when no digits are found.
func ParseWager(input string) (int64, bool) {
	i := 0
	for i < len(input) && isSpace(input[i]) {
		i++
	}
	neg := false
	if i < len(input) && (input[i] == '+' || input[i] == '-') {
		neg = input[i] == '-'
		i++
	}
	start := i
	for i < len(input) && input[i] >= '0' && input[i] <= '9' {
		i++
	}
	if i == start {
		return 0, false
	}
	v, err := strconv.ParseInt(input[start:i], 10, 64)
	if err != nil {
		// Overflow: saturate, the clamp brings it back into range.
		v = 1<<63 - 1
	}
	if neg {
		v = -v
	}
	return v, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

// ApplyBet validates the requested wager into the current bet. Invalid input
// falls back to the minimum bet; valid input is clamped to [MinBet, balance].
func (s *Session) ApplyBet(input string) int64 {
	bet := s.rules.MinBet
	if entered, ok := ParseWager(input); ok {
		if decimal.NewFromInt(entered).GreaterThan(s.balance) {
			entered = s.balance.IntPart()
		}
		if entered > bet {
			bet = entered
		}
	}
	s.currentBet = bet
	s.emit(Event{Type: EventBetApplied, Wager: bet})
	return bet
}

// PlaceWager handles a drop request. The bet is validated first; the drop is
// then refused if the balance cannot cover it or the table is full. On success
// the bet is debited and the ball admitted in the same call.
func (s *Session) PlaceWager(input string, now time.Time) (*Ball, error) {
	bet := s.ApplyBet(input)

	if s.balance.LessThan(decimal.NewFromInt(bet)) {
		s.emit(Event{Type: EventNotice, Text: "Insufficient balance!"})
		return nil, ErrInsufficientBalance
	}
	if len(s.balls) >= s.rules.MaxActiveBalls {
		s.emit(Event{Type: EventNotice, Text: "Too many balls in play, please wait!"})
		return nil, ErrCapacityExceeded
	}

	s.balance = s.balance.Sub(decimal.NewFromInt(bet))
	s.ledger.Wagered = s.ledger.Wagered.Add(decimal.NewFromInt(bet))
	s.ledger.Drops++
	s.emit(Event{Type: EventBalance, Balance: s.FormattedBalance()})

	offset := s.rng.Float64()*2*SpawnJitter - SpawnJitter
	vx := s.rng.Float64()*2 - 1
	ball := NewBall(
		uuid.NewString(),
		NewVec2(s.board.Canvas.Width/2+offset, SpawnY),
		NewVec2(vx, SpawnVelocityY),
		s.board.Profile,
		bet,
		now,
	)
	s.balls = append(s.balls, ball)
	s.emit(Event{Type: EventBallSpawned, BallID: ball.ID, Wager: bet})

	return ball, nil
}

// Step advances every ball one tick, scores landings, discards balls that
// left the field, and expires slot displays. Balls are visited in reverse so
// removal never skips a neighbour.
func (s *Session) Step(now time.Time) {
	for i := len(s.balls) - 1; i >= 0; i-- {
		ball := s.balls[i]
		s.pending = append(s.pending, ball.Update(s.board, now, s.rules.SuppressRepeatHits)...)

		if !ball.Scored && ball.Position.Y >= s.board.LandingLine() {
			s.land(ball, now)
			s.remove(i)
			continue
		}

		if ball.Position.Y > s.board.ExitLine() {
			s.ledger.Lost++
			s.emit(Event{Type: EventBallLost, BallID: ball.ID, Wager: ball.Wager})
			s.remove(i)
		}
	}

	for i := range s.slots {
		if s.slots[i].Active && !now.Before(s.slots[i].ExpiresAt) {
			s.slots[i] = SlotDisplay{}
			s.emit(Event{Type: EventSlotClear, Slot: intPtr(i)})
		}
	}
}

func (s *Session) land(ball *Ball, now time.Time) {
	slot := s.board.SlotFor(ball.Position.X, len(s.slots))
	multiplier := DrawMultiplier(s.rng)

	bet := s.currentBet
	if s.rules.PayoutOnBallWager {
		bet = ball.Wager
	}
	win := decimal.NewFromInt(bet).Mul(decimal.NewFromFloat(multiplier)).Round(0)

	s.balance = s.balance.Add(win)
	s.ledger.Credited = s.ledger.Credited.Add(win)
	s.ledger.Landings++
	ball.Scored = true

	text := strconv.FormatFloat(multiplier, 'f', -1, 64) + "x"
	s.slots[slot] = SlotDisplay{Text: text, Active: true, ExpiresAt: now.Add(SlotDisplayTime)}

	s.landings = append(s.landings, Landing{
		SessionID:  s.ID,
		BallID:     ball.ID,
		Slot:       slot,
		Multiplier: multiplier,
		Wager:      bet,
		WinAmount:  win,
		Balance:    s.balance,
		LandedAt:   now,
	})

	s.emit(Event{
		Type:       EventBallLanded,
		BallID:     ball.ID,
		Slot:       intPtr(slot),
		Multiplier: multiplier,
		Wager:      bet,
		Amount:     win.String(),
	})
	// Every tier pays above 1x, so the lose sound only fires for a modified table.
	if multiplier > 1 {
		s.emit(Event{Type: EventWin, BallID: ball.ID})
	} else {
		s.emit(Event{Type: EventLose, BallID: ball.ID})
	}
	s.emit(Event{Type: EventBalance, Balance: s.FormattedBalance()})
	s.emit(Event{Type: EventSlotShow, Slot: intPtr(slot), Text: text, Multiplier: multiplier})
}

func (s *Session) remove(i int) {
	copy(s.balls[i:], s.balls[i+1:])
	s.balls[len(s.balls)-1] = nil
	s.balls = s.balls[:len(s.balls)-1]
}

func (s *Session) emit(e Event) {
	s.pending = append(s.pending, e)
}

// DrainEvents returns and clears the events produced since the last drain.
func (s *Session) DrainEvents() []Event {
	out := s.pending
	s.pending = nil
	return out
}

// DrainLandings returns and clears the landings scored since the last drain.
func (s *Session) DrainLandings() []Landing {
	out := s.landings
	s.landings = nil
	return out
}

// Reconcile checks balance == initial - wagered + credited.
func (s *Session) Reconcile() error {
	expected := decimal.NewFromInt(s.rules.InitialBalance).Sub(s.ledger.Wagered).Add(s.ledger.Credited)
	if !expected.Equal(s.balance) {
		return fmt.Errorf("balance %s does not reconcile, expected %s", s.balance, expected)
	}
	if s.ledger.Drops != s.ledger.Landings+s.ledger.Lost+len(s.balls) {
		return fmt.Errorf("drops %d != landings %d + lost %d + active %d",
			s.ledger.Drops, s.ledger.Landings, s.ledger.Lost, len(s.balls))
	}
	return nil
}

func (s *Session) Balance() decimal.Decimal { return s.balance }
func (s *Session) CurrentBet() int64 { return s.currentBet }
func (s *Session) ActiveBalls() int { return len(s.balls) }
func (s *Session) Board() *Board { return s.board }
func (s *Session) Ledger() Ledger { return s.ledger }
func (s *Session) Rules() Rules { return s.rules }

// Balls exposes the active set for inspection. Callers must not retain it
// across a Step.
func (s *Session) Balls() []*Ball { return s.balls }

// Slots returns a copy of the slot displays.
func (s *Session) Slots() []SlotDisplay {
	out := make([]SlotDisplay, len(s.slots))
	copy(out, s.slots)
	return out
}

// FormattedBalance renders the balance as currency with two decimals.
func (s *Session) FormattedBalance() string {
	return "$" + s.balance.StringFixed(2)
}

// Snapshot is a point-in-time summary for the API.
type Snapshot struct {
	ID          string        `json:"id"`
	Balance     string        `json:"balance"`
	CurrentBet  int64         `json:"current_bet"`
	ActiveBalls int           `json:"active_balls"`
	Rows        int           `json:"rows"`
	Profile     string        `json:"profile"`
	Canvas      Canvas        `json:"canvas"`
	Slots       []SlotDisplay `json:"slots"`
	Ledger      Ledger        `json:"ledger"`
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:          s.ID,
		Balance:     s.FormattedBalance(),
		CurrentBet:  s.currentBet,
		ActiveBalls: len(s.balls),
		Rows:        s.board.Rows,
		Profile:     s.board.Profile.Name,
		Canvas:      s.board.Canvas,
		Slots:       s.Slots(),
		Ledger:      s.ledger,
	}
}
