package handlers

import (
	"errors"
	"net/http"

	"daily_games/internal/errs"
	"daily_games/internal/service"
	"daily_games/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Games    *service.GameService
	Tokens   *service.TokenService
	Sessions *store.SessionStore
}

func NewHandler(games *service.GameService, tokens *service.TokenService, sessions *store.SessionStore) *Handler {
	return &Handler{Games: games, Tokens: tokens, Sessions: sessions}
}

func playerID(c *gin.Context) (string, bool) {
	v, ok := c.Get("player_id")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// fail maps sentinel errors to stable HTTP responses.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrUnknownGame), errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrEpochConflict):
		// the daily window rolled mid-request; the client must re-fetch start
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "restart": true})
	case errors.Is(err, errs.ErrUpstreamFetch):
		c.Header("Retry-After", "30")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "retryable": true})
	case errors.Is(err, errs.ErrNotInitialized):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
