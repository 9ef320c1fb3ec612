package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.RestAddr != ":8081" {
		t.Fatalf("default addrs wrong: %s %s", cfg.ListenAddr, cfg.RestAddr)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.IdleRetention != time.Hour {
		t.Fatalf("default retention wrong: %v %v", cfg.SessionTTL, cfg.IdleRetention)
	}
	if cfg.ReconnectGrace != 60*time.Second || cfg.SweepInterval != time.Minute {
		t.Fatalf("default grace/sweep wrong: %v %v", cfg.ReconnectGrace, cfg.SweepInterval)
	}
	if cfg.LobbyDebounce != 250*time.Millisecond || cfg.MaxConcurrentGames != 200 {
		t.Fatalf("default lobby/capacity wrong: %v %d", cfg.LobbyDebounce, cfg.MaxConcurrentGames)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REDIS_URL", "  redis://redis:6379/1  ")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("RECONNECT_GRACE", "0s")
	t.Setenv("LOBBY_DEBOUNCE_MS", "100")
	t.Setenv("MAX_CONCURRENT_GAMES", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisURL != "redis://redis:6379/1" {
		t.Fatalf("redis url not trimmed: %q", cfg.RedisURL)
	}
	if cfg.ListenAddr != ":9000" || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("overrides not applied: %s %v", cfg.ListenAddr, cfg.SessionTTL)
	}
	// zero grace is a valid policy, not a parse failure
	if cfg.ReconnectGrace != 0 {
		t.Fatalf("zero grace rejected: %v", cfg.ReconnectGrace)
	}
	if cfg.LobbyDebounce != 100*time.Millisecond || cfg.MaxConcurrentGames != 50 {
		t.Fatalf("lobby/capacity overrides wrong: %v %d", cfg.LobbyDebounce, cfg.MaxConcurrentGames)
	}
}

func TestLoadInvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("MAX_CONCURRENT_GAMES", "-3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.MaxConcurrentGames != 200 {
		t.Fatalf("bad values not ignored: %v %d", cfg.SessionTTL, cfg.MaxConcurrentGames)
	}
}

func TestLoadRequiresRedisURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without REDIS_URL")
	}
}
