// Package oplog persists the operation log: a JSON array of
// {file, operation, timestamp} records rewritten in full on every append.
package oplog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"sfm/internal/sfm"
)

// DefaultFileName is the default name of the log file.
const DefaultFileName = "file_logs.json"

// Store is a file-backed operation log. Each Record is one critical section:
// an in-process mutex plus an advisory lock on <path>.lock cover the whole
// read-append-rewrite, so the watcher and the menu never lose each other's
// entries.
type Store struct {
	path  string
	clock sfm.Clock
	mu    sync.Mutex
	lock  *flock.Flock
}

var _ sfm.OperationLog = (*Store)(nil)

// NewStore creates a Store writing to path. The parent directory is created
// if missing.
func NewStore(path string, clock sfm.Clock) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &Store{
		path:  path,
		clock: clock,
		lock:  flock.New(path + ".lock"),
	}, nil
}

// Path returns the log file location.
func (s *Store) Path() string {
	return s.path
}

// Record appends one entry stamped with the current time.
func (s *Store) Record(subject, operation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("locking operation log: %w", err)
	}
	defer s.lock.Unlock()

	entries := s.read()
	entries = append(entries, sfm.LogEntry{
		File:      subject,
		Operation: operation,
		Timestamp: s.clock.Now().Format(time.RFC3339Nano),
	})
	return s.write(entries)
}

// Entries returns every entry in append order. A missing or corrupt log
// reads as empty.
func (s *Store) Entries() ([]sfm.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking operation log: %w", err)
	}
	defer s.lock.Unlock()

	return s.read(), nil
}

// read loads the current entries, treating a missing or unparsable file as
// an empty log.
func (s *Store) read() []sfm.LogEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []sfm.LogEntry{}
	}
	var entries []sfm.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []sfm.LogEntry{}
	}
	if entries == nil {
		entries = []sfm.LogEntry{}
	}
	return entries
}

// write replaces the log with entries via temp file + rename.
func (s *Store) write(entries []sfm.LogEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding operation log: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".oplog-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing operation log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing operation log: %w", err)
	}
	return nil
}
