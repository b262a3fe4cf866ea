package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds the runtime configuration, read from environment variables.
type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// AutoLockAfterDays is the age in days past which unlocked records are
	// locked by the background sweep.
	AutoLockAfterDays int
	// AutoLockIntervalMinutes is how often the sweep runs.
	AutoLockIntervalMinutes int
}

// Load reads configuration from the environment. DATABASE_URL and
// JWT_SECRET are required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:             os.Getenv("DATABASE_URL"),
		Port:                    getEnv("PORT", "8080"),
		JWTSecret:               os.Getenv("JWT_SECRET"),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		AutoLockAfterDays:       getEnvInt("AUTO_LOCK_AFTER_DAYS", 1),
		AutoLockIntervalMinutes: getEnvInt("AUTO_LOCK_INTERVAL_MINUTES", 60),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	if cfg.AutoLockAfterDays < 1 {
		cfg.AutoLockAfterDays = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
