package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
)

type authRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

// Auth issues a bearer token and a Redis-backed session for a player id
// the identity layer already authenticated upstream.
func (h *Handler) Auth(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "player_id required"})
		return
	}

	token, err := h.Tokens.Generate(req.PlayerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	sessionID := newSessionID()
	if err := h.Sessions.Create(c.Request.Context(), sessionID, req.PlayerID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.SetCookie("session_id", sessionID, int(h.Sessions.TTL().Seconds()), "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// Heartbeat extends the caller's session TTL.
func (h *Handler) Heartbeat(c *gin.Context) {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	playerID, err := h.Sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
		return
	}
	if playerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}

	if _, err := h.Sessions.Heartbeat(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "player_id": playerID})
}

// Logout deletes the caller's session on disconnect.
func (h *Handler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie("session_id")
	if err == nil && sessionID != "" {
		_ = h.Sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie("session_id", "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func newSessionID() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
