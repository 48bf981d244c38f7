package cache

import (
	"context"
	"time"

	"daily_games/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Connect opens the shared Redis client used for ephemeral game state,
// leaderboards, streak guards, sessions and rate limiting.
func Connect(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to ping redis", "addr", addr, "error", err)
	}

	logger.Info("redis connected", "addr", addr)
	return client
}
