package testsupport

import (
	"context"
	"testing"

	"shotscan/internal/config"
	"shotscan/internal/features"
	"shotscan/internal/featurestore"
)

// MustOpenStore opens a featurestore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *featurestore.Store {
	t.Helper()

	store, err := featurestore.Open(cfg)
	if err != nil {
		t.Fatalf("featurestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustPut stores records for video/stream or fails the test.
func MustPut(t testing.TB, store *featurestore.Store, video, stream string, records []features.Record) {
	t.Helper()

	if err := store.Put(context.Background(), video, stream, records); err != nil {
		t.Fatalf("store.Put(%s/%s): %v", video, stream, err)
	}
}
