package db

import (
	"testing"
	"time"
)

func TestPoolConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("POSTGRES_MAX_OPEN_CONNS", "")
		t.Setenv("POSTGRES_MAX_IDLE_CONNS", "")
		t.Setenv("POSTGRES_CONN_MAX_LIFETIME_SECONDS", "")

		cfg := poolConfigFromEnv()
		if cfg.maxOpen != 25 || cfg.maxIdle != 5 {
			t.Fatalf("defaults: open=%d idle=%d, want 25/5", cfg.maxOpen, cfg.maxIdle)
		}
		if cfg.maxLifetime != 30*time.Minute {
			t.Fatalf("default lifetime = %s, want 30m", cfg.maxLifetime)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("POSTGRES_MAX_OPEN_CONNS", "50")
		t.Setenv("POSTGRES_MAX_IDLE_CONNS", "10")
		t.Setenv("POSTGRES_CONN_MAX_LIFETIME_SECONDS", "600")

		cfg := poolConfigFromEnv()
		if cfg.maxOpen != 50 || cfg.maxIdle != 10 || cfg.maxLifetime != 10*time.Minute {
			t.Fatalf("overrides not applied: %+v", cfg)
		}
	})

	t.Run("idle capped at open", func(t *testing.T) {
		t.Setenv("POSTGRES_MAX_OPEN_CONNS", "4")
		t.Setenv("POSTGRES_MAX_IDLE_CONNS", "10")
		t.Setenv("POSTGRES_CONN_MAX_LIFETIME_SECONDS", "")

		cfg := poolConfigFromEnv()
		if cfg.maxIdle != 4 {
			t.Fatalf("idle = %d, want capped to 4", cfg.maxIdle)
		}
	})
}
