package main

import (
	"context"
	"os"

	"daily_games/internal/logger"
	"daily_games/internal/migrate"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	if err := migrate.Up(context.Background(), dsn); err != nil {
		logger.Fatal("migrations failed", "error", err)
	}

	logger.Info("migrations applied")
}
