// Package config loads server settings from environment variables.
// The editing core itself never reads ambient configuration; everything
// it needs is passed in explicitly from here.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/sgrady/go-doc-editor/editor"
)

type Config struct {
	Addr             string
	StoreBackend     string // memory | firestore | redis
	FirestoreProject string
	RedisURL         string

	// CacheFlushInterval enables the write-behind cache when > 0.
	CacheFlushInterval time.Duration

	AutoSave editor.AutoSaveConfig
}

func Load() Config {
	return Config{
		Addr:               getenv("EDITOR_ADDR", ":8080"),
		StoreBackend:       getenv("EDITOR_STORE", "memory"),
		FirestoreProject:   getenv("FIRESTORE_PROJECT", ""),
		RedisURL:           getenv("REDIS_URL", "redis://localhost:6379"),
		CacheFlushInterval: time.Duration(getenvInt("EDITOR_CACHE_FLUSH_SECONDS", 0)) * time.Second,
		AutoSave: editor.AutoSaveConfig{
			Enabled:    getenvBool("EDITOR_AUTOSAVE", true),
			Interval:   time.Duration(getenvInt("EDITOR_AUTOSAVE_INTERVAL_MS", 30000)) * time.Millisecond,
			MaxRetries: getenvInt("EDITOR_AUTOSAVE_MAX_RETRIES", 3),
			RetryDelay: time.Duration(getenvInt("EDITOR_AUTOSAVE_RETRY_DELAY_MS", 1000)) * time.Millisecond,
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
