package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration. It is built once at startup
// and treated as read-only afterwards; the signing secret and hashing cost
// are handed to the token issuer and password hasher by reference rather
// than read from globals.
type Config struct {
	ServerPort     int
	DatabasePath   string
	JWTSecret      string
	TokenTTL       time.Duration // lifetime of issued session tokens
	BcryptCost     int
	ResetTokenTTL  time.Duration // lifetime of password reset tokens
	ReaperSchedule string        // cron expression for the expired-token reaper
	CORSOrigin     string
}

// Load loads configuration from environment variables or sets defaults.
// JWT_SECRET has no default: a missing secret is a startup error.
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	resetTTL, err := time.ParseDuration(getEnv("RESET_TOKEN_TTL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_TOKEN_TTL: %w", err)
	}

	cost, err := strconv.Atoi(getEnv("BCRYPT_COST", strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST %d outside valid range %d-%d", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Config{
		ServerPort:     port,
		DatabasePath:   getEnv("DATABASE_PATH", "./credstore.db"),
		JWTSecret:      secret,
		TokenTTL:       tokenTTL,
		BcryptCost:     cost,
		ResetTokenTTL:  resetTTL,
		ReaperSchedule: getEnv("REAPER_SCHEDULE", "*/5 * * * *"),
		CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:3000"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
