// Package ws streams the live leaderboard and reset countdown for a game
// over a websocket, pushing an update every few seconds.
package ws

import (
	"context"
	"net/http"
	"os"
	"time"

	"daily_games/internal/domain"
	"daily_games/internal/logger"
	"daily_games/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	pushInterval = 5 * time.Second
)

// LiveUpdate is one frame of the feed.
type LiveUpdate struct {
	Game           string                    `json:"game"`
	Leaderboard    []domain.LeaderboardEntry `json:"leaderboard"`
	SecondsToReset int                       `json:"seconds_to_reset"`
}

// Handle upgrades the connection and streams updates until the client
// goes away.
func Handle(games *service.GameService) gin.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		game := c.Param("game")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade failed", "error", err)
			return
		}

		stream(c.Request.Context(), conn, games, game)
	}
}

func stream(ctx context.Context, conn *websocket.Conn, games *service.GameService, game string) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// drain reads so close frames are processed
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()

	for {
		entries, seconds, err := games.Live(ctx, game)
		if err != nil {
			logger.Warn("live feed read failed", "game", game, "error", err)
			return
		}

		update := LiveUpdate{Game: game, Leaderboard: entries, SecondsToReset: seconds}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(update); err != nil {
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
