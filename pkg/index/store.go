// Package index provides durable id-to-record metadata stores, one per
// entity kind. A store is the single source of truth for which entities
// exist; backing transcript files are derived storage.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a durable mapping from entity id to an index record. The whole
// mapping is loaded at construction and rewritten to disk on every mutation.
// It assumes a single active process; there is no cross-process locking.
type Store[R any] struct {
	path    string
	records map[string]R
}

// Open loads the store backed by the given file. A missing or unparseable
// file initializes an empty mapping and is never an error.
func Open[R any](path string) *Store[R] {
	s := &Store[R]{path: path, records: make(map[string]R)}
	b, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var loaded map[string]R
	if err := json.Unmarshal(b, &loaded); err != nil || loaded == nil {
		return s
	}
	s.records = loaded
	return s
}

// Get returns the record for id.
func (s *Store[R]) Get(id string) (R, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Contains reports whether id exists in the store.
func (s *Store[R]) Contains(id string) bool {
	_, ok := s.records[id]
	return ok
}

// Put inserts or replaces the record for id and persists the store.
func (s *Store[R]) Put(id string, rec R) error {
	s.records[id] = rec
	return s.save()
}

// Delete removes the record for id, if present, and persists the store.
func (s *Store[R]) Delete(id string) error {
	if _, ok := s.records[id]; !ok {
		return nil
	}
	delete(s.records, id)
	return s.save()
}

// Len returns the number of records.
func (s *Store[R]) Len() int {
	return len(s.records)
}

// All returns a copy of the full mapping.
func (s *Store[R]) All() map[string]R {
	out := make(map[string]R, len(s.records))
	for id, r := range s.records {
		out[id] = r
	}
	return out
}

// Path returns the backing file path.
func (s *Store[R]) Path() string {
	return s.path
}

// save serializes the full mapping and writes it atomically via a temp file.
func (s *Store[R]) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("index: create directory: %w", err)
	}
	b, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("index: encode %s: %w", s.path, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("index: write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("index: atomic rename %s: %w", s.path, err)
	}
	return nil
}
