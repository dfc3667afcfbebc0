// Package config provides application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	DBPath        string
	Port          string
	RetentionDays int

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	StravaClientID     string
	StravaClientSecret string
	StravaRefreshToken string
}

// Load reads configuration from environment variables. Entry points are
// expected to have loaded .env beforehand (godotenv).
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:        getEnv("ULTRACOACH_DB", defaultDBPath()),
		Port:          getEnv("PORT", "8080"),
		RetentionDays: getEnvInt("CONVO_RETENTION_DAYS", 90),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		StravaClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		StravaClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		StravaRefreshToken: os.Getenv("STRAVA_REFRESH_TOKEN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields every command needs. Agent and Strava
// credentials are checked separately because the store-only commands run
// without them.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("ULTRACOACH_DB cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("CONVO_RETENTION_DAYS must be >= 0")
	}
	return nil
}

// ValidateAgent checks the credentials the conversational agent requires.
func (c *Config) ValidateAgent() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

// StravaConfigured reports whether all Strava credentials are present.
func (c *Config) StravaConfigured() bool {
	return c.StravaClientID != "" && c.StravaClientSecret != "" && c.StravaRefreshToken != ""
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ultracoach.db"
	}
	return filepath.Join(home, ".ultracoach", "coach.db")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
