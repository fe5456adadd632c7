package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort     = "5000"
	defaultTokenTTL = 24 * time.Hour
)

// Config holds all process configuration, read once at startup.
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    string
	TMDBAPIKey   string
	TMDBBaseURL  string
	TokenTTL     time.Duration
	PageDelay    time.Duration
	LogPath      string
}

// Load reads configuration from the environment, after loading a .env
// file if one is present. The process must refuse to start when any
// required variable is missing, rather than issuing unverifiable tokens
// or unauthenticated provider calls.
func Load() (*Config, error) {
	// A missing .env is fine; environment variables may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         envDefault("PORT", defaultPort),
		DatabasePath: os.Getenv("DATABASE_PATH"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TMDBAPIKey:   os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:  os.Getenv("TMDB_BASE_URL"),
		TokenTTL:     defaultTokenTTL,
		PageDelay:    time.Second,
		LogPath:      os.Getenv("LOG_PATH"),
	}

	var missing []string
	if cfg.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.TMDBAPIKey == "" {
		missing = append(missing, "TMDB_API_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return nil, fmt.Errorf("invalid TOKEN_TTL %q: must be a positive duration", raw)
		}
		cfg.TokenTTL = ttl
	}

	if raw := os.Getenv("TRENDING_PAGE_DELAY"); raw != "" {
		delay, err := time.ParseDuration(raw)
		if err != nil || delay < 0 {
			return nil, fmt.Errorf("invalid TRENDING_PAGE_DELAY %q: must be a duration", raw)
		}
		cfg.PageDelay = delay
	}

	return cfg, nil
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
