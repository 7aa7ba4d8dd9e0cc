// Package kvstore provides a failure-tolerant string-keyed store for
// JSON-encoded application records, backed by the uplift SQLite database.
//
// Every operation honors the same contract: reads fall back to a supplied
// default on miss, unavailable storage, or corrupted data; writes report
// success as a bool. Nothing here ever panics or returns an error to the
// caller - failures are logged and degraded.
package kvstore

import (
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

const (
	getStatement    = `SELECT value FROM kv_entries WHERE key = ?`
	setStatement    = `INSERT INTO kv_entries (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = unixepoch()`
	removeStatement = `DELETE FROM kv_entries WHERE key = ?`
	hasStatement    = `SELECT 1 FROM kv_entries WHERE key = ?`
)

// Store wraps a database handle with the failure-tolerant KV contract.
// A Store with a nil handle behaves as an always-empty read-only store,
// mirroring a runtime where persistent storage is unavailable.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// New creates a Store over db. db may be nil (storage unavailable).
// logger may be nil, in which case logging is disabled.
func New(db *sql.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, log: logger}
}

// Available reports whether a persistent backend is attached.
func (s *Store) Available() bool {
	return s.db != nil
}

// Get returns the stored value for key deserialized into T, or defaultValue
// if the key is absent, storage is unavailable, or the stored data cannot be
// parsed. Corrupted data is treated identically to "absent".
func Get[T any](s *Store, key string, defaultValue T) T {
	if s.db == nil {
		return defaultValue
	}

	var raw string
	err := s.db.QueryRow(getStatement, key).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("failed to read stored value", zap.String("key", key), zap.Error(err))
		}
		return defaultValue
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.log.Warn("stored value is corrupted, falling back to default", zap.String("key", key), zap.Error(err))
		return defaultValue
	}

	return value
}

// Set serializes value and persists it under key, returning whether the
// write succeeded.
func Set[T any](s *Store, key string, value T) bool {
	if s.db == nil {
		return false
	}

	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Error("failed to serialize value", zap.String("key", key), zap.Error(err))
		return false
	}

	if _, err := s.db.Exec(setStatement, key, string(raw)); err != nil {
		s.log.Error("failed to persist value", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// Remove deletes the entry under key. Removing an absent key succeeds.
func (s *Store) Remove(key string) bool {
	if s.db == nil {
		return false
	}

	if _, err := s.db.Exec(removeStatement, key); err != nil {
		s.log.Error("failed to remove value", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

// Has reports whether key currently holds a value.
func (s *Store) Has(key string) bool {
	if s.db == nil {
		return false
	}

	var one int
	err := s.db.QueryRow(hasStatement, key).Scan(&one)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn("failed to check stored key", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

// ClearAll deletes every key in knownKeys. Used for a full app data reset.
// Returns false if any removal failed.
func (s *Store) ClearAll(knownKeys []string) bool {
	if s.db == nil {
		return false
	}

	ok := true
	for _, key := range knownKeys {
		if !s.Remove(key) {
			ok = false
		}
	}
	return ok
}
