package game

// EventType names a discrete output of a simulation step.
type EventType string

const (
	// Audio triggers. Each is an independent fire-and-forget instance.
	EventBounce EventType = "bounce"
	EventWin    EventType = "win"
	EventLose   EventType = "lose"

	// Display updates.
	EventBalance    EventType = "balance"
	EventBetApplied EventType = "bet_applied"
	EventSlotShow   EventType = "slot_show"
	EventSlotClear  EventType = "slot_clear"
	EventNotice     EventType = "notice"

	// Lifecycle.
	EventBallSpawned EventType = "ball_spawned"
	EventBallLanded  EventType = "ball_landed"
	EventBallLost    EventType = "ball_lost"
	EventBoardBuilt  EventType = "board_built"
)

// Event is a flat record so sinks can serialize it without type switches.
// Only the fields relevant to Type are set.
type Event struct {
	Type       EventType `json:"type"`
	BallID     string    `json:"ball_id,omitempty"`
	PegID      *int      `json:"peg_id,omitempty"`
	Slot       *int      `json:"slot,omitempty"`
	Multiplier float64   `json:"multiplier,omitempty"`
	Wager      int64     `json:"wager,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Balance    string    `json:"balance,omitempty"`
	Text       string    `json:"text,omitempty"`
}

// IsSound reports whether the event is an audio trigger.
func (e Event) IsSound() bool {
	switch e.Type {
	case EventBounce, EventWin, EventLose:
		return true
	}
	return false
}

func intPtr(v int) *int {
	return &v
}
