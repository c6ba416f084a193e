package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/plinko/internal/game"
)

// GetConfig returns the round rules and payout table the renderer displays
func GetConfig(rules game.Rules) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"min_bet":          rules.MinBet,
			"initial_balance":  rules.InitialBalance,
			"max_active_balls": rules.MaxActiveBalls,
			"slot_count":       rules.SlotCount,
			"reward_table":     game.RewardTable,
			"expected_return":  game.ExpectedMultiplier(),
		})
	}
}
