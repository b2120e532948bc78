package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Compile-time interface check.
var _ KV = (*FileKV)(nil)

// FileKV keeps values in memory and persists them to a JSON file on every
// write.
type FileKV struct {
	mu       sync.RWMutex
	values   map[string]string
	filePath string
	log      *slog.Logger
}

// NewFileKV creates a FileKV, loading persisted state from filePath. A
// missing file starts empty; an unreadable one is an error.
func NewFileKV(filePath string, log *slog.Logger) (*FileKV, error) {
	s := &FileKV{
		values:   make(map[string]string),
		filePath: filePath,
		log:      log,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the value stored under key.
func (s *FileKV) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value and persists to disk.
func (s *FileKV) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		if had {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

// Close is a no-op; every Set is already on disk.
func (s *FileKV) Close() error { return nil }

// load reads the JSON file into memory.
func (s *FileKV) load() error {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.filePath, err)
	}
	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decoding %s: %w", s.filePath, err)
	}
	if loaded != nil {
		s.values = loaded
	}
	s.log.Info("loaded kv file", "path", s.filePath, "keys", len(loaded))
	return nil
}

// flush writes the in-memory state to disk. Must be called with mu held.
func (s *FileKV) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling kv: %w", err)
	}
	if dir := filepath.Dir(s.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", s.filePath, err)
	}
	return nil
}
