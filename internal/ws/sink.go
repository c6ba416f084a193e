package ws

import (
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/game"
)

type messageData struct {
	Message string `json:"message"`
}

type soundData struct {
	Name   string `json:"name"`
	BallID string `json:"ball_id,omitempty"`
}

type balanceData struct {
	Balance string `json:"balance"`
}

type betData struct {
	Bet int64 `json:"bet"`
}

type slotData struct {
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Active     bool    `json:"active"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

type boardData struct {
	Profile string `json:"profile"`
}

type bigWinData struct {
	SessionID  string  `json:"session_id"`
	Multiplier float64 `json:"multiplier"`
	WinAmount  string  `json:"win_amount"`
}

// Frame implements game.Sink.
func (c *Client) Frame(f game.Frame) {
	c.emit("frame", f)
}

// Events implements game.Sink. Lifecycle events with no renderer counterpart
// are not forwarded.
func (c *Client) Events(events []game.Event) {
	for _, e := range events {
		msgType, data, ok := messageFor(e)
		if !ok {
			continue
		}
		c.emit(msgType, data)
	}
}

func (c *Client) emit(msgType string, data interface{}) {
	payload, err := encode(msgType, data)
	if err != nil {
		log.Errorf("[WS] Error marshaling %s: %v", msgType, err)
		return
	}
	c.push(payload)
}

// messageFor maps a simulation event to its outbound message.
func messageFor(e game.Event) (string, interface{}, bool) {
	switch e.Type {
	case game.EventBounce, game.EventWin, game.EventLose:
		return "sound", soundData{Name: string(e.Type), BallID: e.BallID}, true
	case game.EventBalance:
		return "balance", balanceData{Balance: e.Balance}, true
	case game.EventBetApplied:
		return "bet_applied", betData{Bet: e.Wager}, true
	case game.EventSlotShow:
		return "slot", slotData{Index: deref(e.Slot), Text: e.Text, Active: true, Multiplier: e.Multiplier}, true
	case game.EventSlotClear:
		return "slot", slotData{Index: deref(e.Slot)}, true
	case game.EventNotice:
		return "notice", messageData{Message: e.Text}, true
	case game.EventBoardBuilt:
		return "board", boardData{Profile: e.Text}, true
	}
	return "", nil, false
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
