package history

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/plinko/internal/models"
)

// MaxRecent caps how many rounds Recent returns.
const MaxRecent = 200

// Store persists rounds to postgres.
type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertRound(ctx context.Context, r *models.Round) error {
	const q = `INSERT INTO plinko_rounds
		(session_id, ball_id, slot, multiplier, wager, win_amount, balance_after, landed_at)
		VALUES (:session_id, :ball_id, :slot, :multiplier, :wager, :win_amount, :balance_after, :landed_at)`
	if _, err := s.db.NamedExecContext(ctx, q, r); err != nil {
		return fmt.Errorf("insert round: %w", err)
	}
	return nil
}

// Recent returns the latest n rounds, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]models.Round, error) {
	n = clampLimit(n)
	rounds := []models.Round{}
	err := s.db.SelectContext(ctx, &rounds, `SELECT id, session_id, ball_id, slot, multiplier, wager, win_amount, balance_after, landed_at, created_at
		FROM plinko_rounds ORDER BY landed_at DESC, id DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("select recent rounds: %w", err)
	}
	return rounds, nil
}

func clampLimit(n int) int {
	if n <= 0 {
		return 50
	}
	if n > MaxRecent {
		return MaxRecent
	}
	return n
}
