package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// saveDelay batches rapid Set calls (drag commits, zoom taps) into a
// single write.
const saveDelay = 500 * time.Millisecond

// Store is a flat key/value settings file. Defaults passed to Open fill
// in missing keys without overwriting what the file already holds.
// Writes are debounced; call Flush before exit.
type Store struct {
	path string

	mu     sync.Mutex
	values map[string]any
	timer  *time.Timer
}

// Open loads the settings file at path, merging defaults for any keys
// the file does not define. A missing file starts from defaults alone.
func Open(path string, defaults map[string]any) (*Store, error) {
	values := map[string]any{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	}
	for key, value := range defaults {
		if _, ok := values[key]; !ok {
			values[key] = value
		}
	}
	return &Store{path: path, values: values}, nil
}

// Set records a value and schedules a debounced save.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(saveDelay, func() {
		if err := s.Flush(); err != nil {
			log.Printf("[settings] save failed: %v", err)
		}
	})
}

// Flush writes the current values to disk immediately.
func (s *Store) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// String returns the value for key, or fallback when absent or not a
// string.
func (s *Store) String(key, fallback string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key].(string); ok {
		return v
	}
	return fallback
}

// Float returns the value for key, or fallback. JSON numbers decode as
// float64, so stored ints come back through here too.
func (s *Store) Float(key string, fallback float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := s.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return fallback
}

// Int returns the value for key truncated to int, or fallback.
func (s *Store) Int(key string, fallback int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := s.values[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

// Bool returns the value for key, or fallback.
func (s *Store) Bool(key string, fallback bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key].(bool); ok {
		return v
	}
	return fallback
}
