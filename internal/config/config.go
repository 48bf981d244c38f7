package config

import (
	"os"
	"strconv"

	"daily_games/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	SessionTTL int // seconds

	// Hour of day (UTC) at which all daily games reset.
	ResetHourUTC int

	// Upstream puzzle provider
	PuzzleAPIURL string
	FetchTimeout int // seconds, bounds the reset fetch while the engine lock is held

	// Rate limiting
	APIRateLimit  int
	APIRateWindow int // seconds

	LogLevel string
	LogJSON  bool
}

// Load reads configuration from the environment (.env is honored in dev).
func Load() *Config {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	puzzleURL := os.Getenv("PUZZLE_API_URL")
	if puzzleURL == "" {
		puzzleURL = "https://lichess.org/api/puzzle/daily"
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   dbURL,
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		JWTSecret:     jwtSecret,
		SessionTTL:    envInt("SESSION_TTL_SECONDS", 24*3600),
		ResetHourUTC:  envHour("RESET_HOUR_UTC", 0),
		PuzzleAPIURL:  puzzleURL,
		FetchTimeout:  envInt("FETCH_TIMEOUT_SECONDS", 10),
		APIRateLimit:  envInt("API_RATE_LIMIT", 60),
		APIRateWindow: envInt("API_RATE_WINDOW_SECONDS", 60),
		LogLevel:      envDefault("LOG_LEVEL", "info"),
		LogJSON:       os.Getenv("LOG_JSON") == "true",
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envHour(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < 24 {
			return n
		}
	}
	return def
}
