package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListGames returns the playable game ids.
func (h *Handler) ListGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": h.Games.Games()})
}

// Start returns the player's state for the requested game, initializing
// it if absent or if the daily window rolled since their last fetch.
func (h *Handler) Start(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	state, err := h.Games.Start(c.Request.Context(), c.Param("game"), pid)
	if err != nil {
		fail(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", state)
}

type updateRequest struct {
	Action json.RawMessage `json:"action" binding:"required"`
}

// Update applies one player action and returns the updated state.
func (h *Handler) Update(c *gin.Context) {
	pid, ok := playerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	state, err := h.Games.ApplyAction(c.Request.Context(), c.Param("game"), pid, req.Action)
	if err != nil {
		fail(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", state)
}
