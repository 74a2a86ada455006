package featurestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"shotscan/internal/config"
	"shotscan/internal/faults"
)

// Store manages feature persistence backed by SQLite.
type Store struct {
	db          *sql.DB
	path        string
	compression Compression
	lock        *flock.Flock
}

// Open initializes or connects to the feature database described by cfg.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "featurestore", "open", "config is nil", nil)
	}
	return OpenPath(cfg.Store.Path, Compression(cfg.Store.Compression))
}

// OpenPath opens the database at path, creating it when missing.
func OpenPath(path string, compression Compression) (*Store, error) {
	switch compression {
	case CompressionNone, CompressionZstd:
	case "":
		compression = CompressionZstd
	default:
		return nil, faults.Wrap(faults.ErrConfiguration, "featurestore", "open",
			fmt.Sprintf("unsupported compression %q", compression), nil)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, faults.Wrap(faults.ErrStore, "featurestore", "open", "create directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrStore, "featurestore", "open", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, faults.Wrap(faults.ErrStore, "featurestore", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{
		db:          db,
		path:        path,
		compression: compression,
		lock:        flock.New(path + ".lock"),
	}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		if errors.Is(err, faults.ErrStore) {
			return nil, err
		}
		return nil, faults.Wrap(faults.ErrStore, "featurestore", "open", "schema", err)
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withWriteLock runs fn while holding the store's writer lock.
func (s *Store) withWriteLock(fn func() error) error {
	ok, err := s.lock.TryLock()
	if err != nil {
		return faults.Wrap(faults.ErrStore, "featurestore", "lock", s.lock.Path(), err)
	}
	if !ok {
		return faults.Wrap(faults.ErrStore, "featurestore", "lock", "another import is writing to "+s.path, nil)
	}
	defer func() { _ = s.lock.Unlock() }()
	return fn()
}
