package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily_games/internal/cache"
	"daily_games/internal/config"
	"daily_games/internal/db"
	"daily_games/internal/domain"
	"daily_games/internal/engine"
	"daily_games/internal/epoch"
	httpServer "daily_games/internal/http"
	"daily_games/internal/http/middleware"
	"daily_games/internal/logger"
	"daily_games/internal/provider"
	"daily_games/internal/repository"
	"daily_games/internal/rollover"
	"daily_games/internal/service"
	"daily_games/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	rdb := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rdb.Close()

	clock := epoch.NewClock(cfg.ResetHourUTC)
	states := store.NewStateStore(rdb)
	leaderboard := store.NewLeaderboard(rdb)
	streak := store.NewStreakTracker(rdb)
	sessions := store.NewSessionStore(rdb, time.Duration(cfg.SessionTTL)*time.Second)
	snapshots := repository.NewSnapshotRepository(dbPool)

	puzzles := provider.NewPuzzleClient(cfg.PuzzleAPIURL)

	var registry *engine.Registry
	pipeline := rollover.NewPipeline(rdb, clock, streak, leaderboard, snapshots,
		func(gameID string) (domain.RankOrder, error) { return registry.RankOrder(gameID) })
	rolloverFn := func(ctx context.Context, gameID, closing, previous string, maxScore int) error {
		middleware.CountReset(gameID)
		return pipeline.Run(ctx, gameID, closing, previous, maxScore)
	}
	registry = engine.NewRegistry(clock, puzzles.FetchDaily, rolloverFn,
		time.Duration(cfg.FetchTimeout)*time.Second)

	games := service.NewGameService(clock, registry, states, leaderboard, streak, snapshots)
	tokens := service.NewTokenService(cfg.JWTSecret, 24*time.Hour)

	middleware.InitRateLimiter(rdb)

	r := gin.Default()

	// CORS: frontend is served from a different origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, cfg, dbPool, rdb, games, tokens, sessions)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "reset_hour_utc", cfg.ResetHourUTC)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
