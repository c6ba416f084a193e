package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Round is one scored ball in the audit ledger. Rows are append-only and
// never read back into a live balance.
type Round struct {
	ID           int64           `db:"id" json:"id"`
	SessionID    string          `db:"session_id" json:"session_id"`
	BallID       string          `db:"ball_id" json:"ball_id"`
	Slot         int             `db:"slot" json:"slot"`
	Multiplier   decimal.Decimal `db:"multiplier" json:"multiplier"`
	Wager        int64           `db:"wager" json:"wager"`
	WinAmount    decimal.Decimal `db:"win_amount" json:"win_amount"`
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balance_after"`
	LandedAt     time.Time       `db:"landed_at" json:"landed_at"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// LandingEvent is the live feed payload published for every landing.
type LandingEvent struct {
	Type       string  `json:"type"`
	SessionID  string  `json:"session_id"`
	BallID     string  `json:"ball_id"`
	Slot       int     `json:"slot"`
	Multiplier float64 `json:"multiplier"`
	Wager      int64   `json:"wager"`
	WinAmount  string  `json:"win_amount"`
	LandedAt   int64   `json:"landed_at"`
}
