package testsupport

import (
	"context"
	"testing"

	"danmaku/internal/config"
	"danmaku/internal/settings"
)

// MustOpenSettings opens a settings.Store for tests and registers cleanup.
func MustOpenSettings(t testing.TB, cfg *config.Config) *settings.Store {
	t.Helper()

	store, err := settings.Open(cfg)
	if err != nil {
		t.Fatalf("settings.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SaveStyle persists a style key for tests using the provided store.
func SaveStyle(t testing.TB, store *settings.Store, key string) int64 {
	t.Helper()

	rev, err := store.SetStyle(context.Background(), key)
	if err != nil {
		t.Fatalf("store.SetStyle: %v", err)
	}
	return rev
}
