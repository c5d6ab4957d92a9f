// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server's runtime configuration, read from the
// environment (a .env file is honored in development).
type Config struct {
	Port          string
	DatabaseURL   string // empty: run without persistence
	RedisAddr     string // empty: run without action history
	RedisPassword string
	LogLevel      string

	TurnTimerSec     int // per-turn clock; 0 keeps the built-in default
	RoomRetentionMin int // finished rooms older than this are reaped
}

// Load reads configuration from the environment.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Port:             getEnv("PORT", "3000"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		TurnTimerSec:     getEnvInt("TURN_TIMER_SEC", 30),
		RoomRetentionMin: getEnvInt("ROOM_RETENTION_MIN", 30),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
