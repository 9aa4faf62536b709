package config

import (
	"fmt"
	"time"

	"matplan/internal/env"
)

// Config holds the configuration for the application.
type Config struct {
	Addr string
	Env  string

	DatabasePath string

	RedisAddr     string
	RedisPassword string

	JWTSecret     string
	SessionTTL    time.Duration

	// LLM config. URL/image recipe parsing is disabled when no key is set.
	LLMProvider  string
	GeminiAPIKey string
	GroqAPIKey   string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	jwtSecret := env.GetString("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	redisAddr := env.GetString("REDIS_ADDR", "")
	if redisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR environment variable not set")
	}

	cfg := &Config{
		Addr:          env.GetString("ADDR", ":8080"),
		Env:           env.GetString("ENV", "development"),
		DatabasePath:  env.GetString("DATABASE_PATH", "data/matplan.db"),
		RedisAddr:     redisAddr,
		RedisPassword: env.GetString("REDIS_PASSWORD", ""),
		JWTSecret:     jwtSecret,
		SessionTTL:    env.GetDuration("SESSION_TTL", 30*24*time.Hour),
		LLMProvider:   env.GetString("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:  env.GetString("GEMINI_API_KEY", ""),
		GroqAPIKey:    env.GetString("GROQ_API_KEY", ""),
	}

	if cfg.LLMProvider != "gemini" && cfg.LLMProvider != "groq" {
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}

	return cfg, nil
}
