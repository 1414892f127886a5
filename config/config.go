package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every runtime setting the application needs. It is built
// once in main and handed to constructors, so business logic never reads
// the environment directly.
type Config struct {
	Port        string
	DatabaseURL string
	FrontendURL string
	JWTSecret   string

	// Advice service
	GeminiAPIKey  string
	GeminiAPIURL  string
	AdviceTimeout time.Duration

	// When true, unparseable amounts are treated as 0 instead of being
	// rejected. Matches the behavior of the legacy app.
	CoerceInvalidAmounts bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:3000"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiAPIURL:         getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"),
		AdviceTimeout:        30 * time.Second,
		CoerceInvalidAmounts: os.Getenv("COERCE_INVALID_AMOUNTS") == "true",
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
