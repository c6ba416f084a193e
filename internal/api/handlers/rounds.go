package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/playmatatu/plinko/internal/models"
)

// RoundReader is the read side of the round ledger.
type RoundReader interface {
	Recent(ctx context.Context, n int) ([]models.Round, error)
}

// GetRecentRounds lists the latest landings from the ledger. reader is nil
// when no database is configured.
func GetRecentRounds(reader RoundReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if reader == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "round history is not enabled"})
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}

		rounds, err := reader.Recent(c.Request.Context(), limit)
		if err != nil {
			log.WithError(err).Error("[HISTORY] failed to load recent rounds")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"rounds": rounds, "count": len(rounds)})
	}
}
