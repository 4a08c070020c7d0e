// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used by both binaries.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultModels is the remote model priority order used when
// SLUG_API_MODELS is unset.
const DefaultModels = "google/gemini-2.5-flash,x-ai/grok-4-fast:free,openai/gpt-4o-mini"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Logging
	LogLevel  slog.Level
	SentryDSN string

	// Remote chat API. An empty key disables the remote strategy.
	APIKey      string
	APIProvider string // "openrouter", "openai", "mistral", "claude", "gemini"
	APIBaseURL  string
	APIModels   []string
	APITimeout  time.Duration

	// Local assistant CLI
	AssistantBin     string
	AssistantTimeout time.Duration

	// Requests per minute per client IP on /api.
	RateLimit int

	// Valkey (Redis-compatible) for shared rate limiting. Empty address
	// keeps counters in process memory.
	ValkeyAddr     string
	ValkeyPassword string
}

// apiKeyEnv maps each provider to the env var holding its key.
var apiKeyEnv = map[string]string{
	"openrouter": "OPENROUTER_API_KEY",
	"openai":     "OPENAI_API_KEY",
	"mistral":    "MISTRAL_API_KEY",
	"claude":     "CLAUDE_API_KEY",
	"gemini":     "GEMINI_API_KEY",
}

// Load reads configuration from environment variables, applying defaults
// where appropriate. Malformed numbers and durations are errors.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		SentryDSN: os.Getenv("SENTRY_DSN"),

		APIProvider:  strings.ToLower(envOrDefault("SLUG_API_PROVIDER", "openrouter")),
		APIBaseURL:   os.Getenv("SLUG_API_BASE_URL"),
		APIModels:    splitList(envOrDefault("SLUG_API_MODELS", DefaultModels)),
		AssistantBin: envOrDefault("SLUG_ASSISTANT_BIN", "claude"),

		ValkeyAddr:     os.Getenv("VALKEY_ADDR"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}

	keyVar, ok := apiKeyEnv[cfg.APIProvider]
	if !ok {
		return nil, fmt.Errorf("SLUG_API_PROVIDER: unknown provider %q", cfg.APIProvider)
	}
	cfg.APIKey = os.Getenv(keyVar)

	var err error
	if cfg.LogLevel, err = parseLevel(envOrDefault("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.APITimeout, err = envDuration("SLUG_API_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.AssistantTimeout, err = envDuration("SLUG_ASSISTANT_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = envInt("RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}

	if len(cfg.APIModels) == 0 {
		return nil, fmt.Errorf("SLUG_API_MODELS must name at least one model")
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasAPIKey reports whether the remote strategy is enabled.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return l, nil
}

// splitList splits a comma-separated list, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
