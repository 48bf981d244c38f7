package http

import (
	"time"

	"daily_games/internal/config"
	"daily_games/internal/http/handlers"
	"daily_games/internal/http/middleware"
	"daily_games/internal/service"
	"daily_games/internal/store"
	"daily_games/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// RegisterRoutes wires the API surface over the assembled services.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	db *pgxpool.Pool,
	rdb *redis.Client,
	games *service.GameService,
	tokens *service.TokenService,
	sessions *store.SessionStore,
) {
	h := handlers.NewHandler(games, tokens, sessions)
	healthHandler := handlers.NewHealthHandler(db, rdb)

	// health checks, no rate limiting
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	rateWindow := time.Duration(cfg.APIRateWindow) * time.Second

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Metrics())
	v1.Use(middleware.RateLimit(cfg.APIRateLimit, rateWindow))
	{
		v1.POST("/auth", h.Auth)
		v1.POST("/session/heartbeat", h.Heartbeat)
		v1.POST("/session/delete", h.Logout)

		v1.GET("/games", h.ListGames)
		v1.GET("/games/:game/start", middleware.JWT(tokens), h.Start)
		v1.POST("/games/:game/update", middleware.JWT(tokens), h.Update)

		// for discord bots and the like, no auth
		v1.GET("/stats/:game/daily", h.DailyStats)
	}

	// live leaderboard + countdown feed
	r.GET("/ws/:game", ws.Handle(games))
}
