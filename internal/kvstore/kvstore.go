// internal/kvstore/kvstore.go
package kvstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store is a small JSON file-backed key/value store. It fills the role
// browser storage plays for the storefront: one file per key, written
// atomically, shared by the taxonomy snapshot and the remembered session.
type Store struct {
	dir string
	mu  sync.Mutex
}

var keyReplacer = strings.NewReplacer(":", "_", "/", "_", "\\", "_")

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Put(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return os.Rename(tmp, path)
}

// Get decodes the stored value into out and reports whether the key was
// present and readable.
func (s *Store) Get(key string, out interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}

	return json.Unmarshal(payload, out) == nil
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	os.Remove(s.path(key))
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, keyReplacer.Replace(key)+".json")
}
