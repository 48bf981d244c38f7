package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DailyStats returns the most recent snapshot for a game: final rankings,
// the max achievable score and the streak at rollover. Unauthenticated so
// bots can poll it.
func (h *Handler) DailyStats(c *gin.Context) {
	snap, err := h.Games.DailyStats(c.Request.Context(), c.Param("game"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":      snap.Date.Format("2006-01-02"),
		"epoch":     snap.Epoch,
		"rankings":  snap.Rankings,
		"max_score": snap.MaxScore,
		"streak":    snap.Streak,
	})
}
