// Package store persists envdoter variables in an embedded SQLite database.
//
// All variables live in one table clustered on the raw key bytes, so a full
// scan returns keys in ascending byte order. Every operation is serialized
// behind a single mutex; a Store may be shared between goroutines.
package store

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var (
	// ErrUnavailable is returned by Open when the database cannot be
	// created or opened.
	ErrUnavailable = errors.New("store unavailable")

	// ErrEncoding is returned when a stored key or value is not valid UTF-8.
	ErrEncoding = errors.New("stored data is not valid UTF-8")

	// ErrEmptyKey is returned by Set for a zero-length key.
	ErrEmptyKey = errors.New("empty key")
)

const schema = `
CREATE TABLE IF NOT EXISTS variables (
	key   BLOB PRIMARY KEY,
	value BLOB
) WITHOUT ROWID;
`

// Store is a durable, ordered, string-keyed dictionary.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
	log  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens or creates the database at path, creating parent directories
// as needed. Any failure wraps ErrUnavailable.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnavailable)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("%w: create store directory: %w", ErrUnavailable, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", ErrUnavailable, err)
	}
	// One connection keeps the pragmas below in effect for every statement.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.log.Debug("store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) initialize() error {
	pragmas := []string{
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("apply %q: %w", p, err)
		}
	}

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// Get returns the value stored for key, or "" if the key is absent.
// Use Lookup to tell an absent key from an empty value.
func (s *Store) Get(key string) (string, error) {
	value, _, err := s.Lookup(key)
	return value, err
}

// Lookup returns the value stored for key and whether the key exists.
func (s *Store) Lookup(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	err := s.db.QueryRow(`SELECT value FROM variables WHERE key = ?`, []byte(key)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}

	if !utf8.Valid(raw) {
		return "", true, fmt.Errorf("get %q: value: %w", key, ErrEncoding)
	}
	return string(raw), true, nil
}

// Set writes value under key, replacing any previous value, and returns key.
func (s *Store) Set(key, value string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR REPLACE INTO variables (key, value) VALUES (?, ?)`,
		[]byte(key), []byte(value))
	if err != nil {
		return "", fmt.Errorf("set %q: %w", key, err)
	}

	s.log.Debug("variable set", zap.String("key", key), zap.Int("bytes", len(value)))
	return key, nil
}

// ListKeys returns every stored key in ascending byte order.
func (s *Store) ListKeys() ([]string, error) {
	return s.ListPrefix("")
}

// ListPrefix returns the stored keys starting with prefix, in ascending
// byte order. The scan starts at prefix and stops at the first key outside it.
func (s *Store) ListPrefix(prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := []byte(prefix)
	var (
		rows *sql.Rows
		err  error
	)
	if len(p) == 0 {
		rows, err = s.db.Query(`SELECT key FROM variables ORDER BY key`)
	} else {
		rows, err = s.db.Query(`SELECT key FROM variables WHERE key >= ? ORDER BY key`, p)
	}
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("list keys: %w", err)
		}
		if !bytes.HasPrefix(raw, p) {
			break
		}
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("list keys: key %q: %w", raw, ErrEncoding)
		}
		keys = append(keys, string(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	return keys, nil
}
