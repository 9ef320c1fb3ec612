package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr string
	RestAddr   string

	RedisURL    string
	DatabaseURL string

	// SessionTTL bounds how long a session record may live in the store.
	SessionTTL time.Duration
	// IdleRetention is how long a never-started session survives before the
	// sweeper purges it.
	IdleRetention time.Duration
	// ReconnectGrace is how long a session survives after a participant
	// disconnects. Zero restores the legacy delete-immediately behavior.
	ReconnectGrace time.Duration
	SweepInterval  time.Duration

	LobbyDebounce time.Duration

	// CatalogDir optionally overrides the embedded card/deck catalog.
	CatalogDir string

	MaxConcurrentGames int
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:         ":8080",
		RestAddr:           ":8081",
		SessionTTL:         24 * time.Hour,
		IdleRetention:      time.Hour,
		ReconnectGrace:     60 * time.Second,
		SweepInterval:      time.Minute,
		LobbyDebounce:      250 * time.Millisecond,
		MaxConcurrentGames: 200,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("REST_ADDR")); v != "" {
		cfg.RestAddr = v
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.CatalogDir = strings.TrimSpace(os.Getenv("CATALOG_DIR"))

	if v := strings.TrimSpace(os.Getenv("SESSION_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("IDLE_RETENTION")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.IdleRetention = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("RECONNECT_GRACE")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.ReconnectGrace = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("SWEEP_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("LOBBY_DEBOUNCE_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LobbyDebounce = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_CONCURRENT_GAMES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrentGames = n
		}
	}

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}
