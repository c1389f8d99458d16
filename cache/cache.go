// Package cache stores compiled scripts in SQLite so that unchanged sources
// are not recompiled. Entries are CBOR images keyed by the source hash.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/teajs/vm"
	"github.com/chazu/teajs/vm/dist"
)

var log = commonlog.GetLogger("teajs.cache")

// ErrNotFound indicates that no image is cached for a hash.
var ErrNotFound = errors.New("cache: entry not found")

// Store is a compiled-code cache backed by a SQLite database.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the cache database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS images (
		hash BLOB PRIMARY KEY,
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		data BLOB NOT NULL,
		created INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened cache %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file the store was opened on.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get loads the compiled script cached under hash. Entries written by
// another image format version are treated as missing.
func (s *Store) Get(hash [16]byte) (*vm.Function, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM images WHERE hash = ? AND version = ?",
		hash[:], dist.FormatVersion).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying image: %w", err)
	}

	img, err := dist.UnmarshalImage(data)
	if err != nil {
		return nil, err
	}
	if img.Hash != hash {
		return nil, fmt.Errorf("cache: entry for %x holds image of %x", hash, img.Hash)
	}
	fn, err := img.Load()
	if err != nil {
		return nil, err
	}
	log.Debugf("hit %s (%x)", img.Name, hash)
	return fn, nil
}

// Put stores fn, compiled from the source with the given hash.
func (s *Store) Put(name string, hash [16]byte, fn *vm.Function) error {
	data, err := dist.MarshalImage(dist.NewImage(name, hash, fn))
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO images (hash, name, version, data, created) VALUES (?, ?, ?, ?, ?)",
		hash[:], name, dist.FormatVersion, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	log.Debugf("stored %s (%x, %d bytes)", name, hash, len(data))
	return nil
}

// Delete removes the entry for hash, if any.
func (s *Store) Delete(hash [16]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM images WHERE hash = ?", hash[:]); err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// Len returns the number of cached images.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM images").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting images: %w", err)
	}
	return n, nil
}

// Purge removes every cached image.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM images"); err != nil {
		return fmt.Errorf("purging cache: %w", err)
	}
	return nil
}
