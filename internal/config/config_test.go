package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_URL", "")
	t.Setenv("REDIS_ADDR", "")
	cfg := LoadWithEnvFile("")
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.PostgresURL != "" || cfg.RedisAddr != "" {
		t.Fatalf("postgres and redis must be opt-in, got %q %q", cfg.PostgresURL, cfg.RedisAddr)
	}
	if cfg.TickInterval != time.Second {
		t.Fatalf("expected 1s tick interval, got %v", cfg.TickInterval)
	}
	if got := cfg.Stores(); len(got) != 1 || got[0] != "sqlite" {
		t.Fatalf("unexpected default stores: %v", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_PASSWORD", "hunter2")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TRIP_STORES", " Postgres, redis ,")
	t.Setenv("TICK_INTERVAL", "250ms")

	cfg := LoadWithEnvFile("")
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" || cfg.RedisPassword != "hunter2" {
		t.Fatalf("expected override redis")
	}
	if cfg.JWTSecret != "secret" {
		t.Fatalf("expected override secret")
	}
	if cfg.TickInterval != 250*time.Millisecond {
		t.Fatalf("expected override tick interval, got %v", cfg.TickInterval)
	}
	stores := cfg.Stores()
	if len(stores) != 2 || stores[0] != "postgres" || stores[1] != "redis" {
		t.Fatalf("unexpected stores: %v", stores)
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SQLITE_PATH=/tmp/from-dotenv.db\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// registered with t.Setenv so the value loaded from the file is restored afterwards
	t.Setenv("SQLITE_PATH", "")
	os.Unsetenv("SQLITE_PATH")

	cfg := LoadWithEnvFile(path)
	if cfg.SQLitePath != "/tmp/from-dotenv.db" {
		t.Fatalf("expected sqlite path from env file, got %q", cfg.SQLitePath)
	}
}

func TestLoadInvalidTickFallsBack(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "-5s")
	if cfg := LoadWithEnvFile(""); cfg.TickInterval != time.Second {
		t.Fatalf("expected fallback tick interval, got %v", cfg.TickInterval)
	}
}
