package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, "memory")
	}
	if cfg.CacheFlushInterval != 0 {
		t.Errorf("CacheFlushInterval = %v, want 0", cfg.CacheFlushInterval)
	}
	if !cfg.AutoSave.Enabled {
		t.Error("autosave should default to enabled")
	}
	if cfg.AutoSave.Interval != 30*time.Second {
		t.Errorf("AutoSave.Interval = %v, want 30s", cfg.AutoSave.Interval)
	}
	if cfg.AutoSave.MaxRetries != 3 {
		t.Errorf("AutoSave.MaxRetries = %d, want 3", cfg.AutoSave.MaxRetries)
	}
	if cfg.AutoSave.RetryDelay != time.Second {
		t.Errorf("AutoSave.RetryDelay = %v, want 1s", cfg.AutoSave.RetryDelay)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EDITOR_ADDR", ":9090")
	t.Setenv("EDITOR_STORE", "redis")
	t.Setenv("EDITOR_CACHE_FLUSH_SECONDS", "5")
	t.Setenv("EDITOR_AUTOSAVE", "false")
	t.Setenv("EDITOR_AUTOSAVE_INTERVAL_MS", "500")

	cfg := Load()

	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":9090")
	}
	if cfg.StoreBackend != "redis" {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, "redis")
	}
	if cfg.CacheFlushInterval != 5*time.Second {
		t.Errorf("CacheFlushInterval = %v, want 5s", cfg.CacheFlushInterval)
	}
	if cfg.AutoSave.Enabled {
		t.Error("autosave should be disabled")
	}
	if cfg.AutoSave.Interval != 500*time.Millisecond {
		t.Errorf("AutoSave.Interval = %v, want 500ms", cfg.AutoSave.Interval)
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("EDITOR_AUTOSAVE_MAX_RETRIES", "lots")
	t.Setenv("EDITOR_AUTOSAVE", "maybe")

	cfg := Load()
	if cfg.AutoSave.MaxRetries != 3 {
		t.Errorf("AutoSave.MaxRetries = %d, want fallback 3", cfg.AutoSave.MaxRetries)
	}
	if !cfg.AutoSave.Enabled {
		t.Error("unparseable bool should fall back to enabled")
	}
}
