// Package memory provides an in-memory core.Storage for tests and headless runs.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/cardweaver/pkg/core"
)

// Storage implements core.Storage with a map.
type Storage struct {
	mu       sync.RWMutex
	data     map[string][]byte
	failures map[string]error
	writes   int
}

// NewStorage creates an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{
		data:     make(map[string][]byte),
		failures: make(map[string]error),
	}
}

// Initialize implements core.Storage.
func (s *Storage) Initialize(ctx context.Context) error { return nil }

// Read implements core.Storage.
func (s *Storage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failures[key]; err != nil {
		return nil, false, err
	}
	data, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Write implements core.Storage.
func (s *Storage) Write(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failures[key]; err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), data...)
	s.writes++
	return nil
}

// Set stores raw bytes under key, bypassing any failure. Useful to seed legacy or
// corrupt payloads.
func (s *Storage) Set(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
}

// Raw returns the bytes stored under key.
func (s *Storage) Raw(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data[key]...)
}

// Fail makes every Read and Write of key return err. A nil err clears the failure.
func (s *Storage) Fail(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, key)
		return
	}
	s.failures[key] = err
}

// Writes returns the number of successful writes.
func (s *Storage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "memory"
}

var _ core.Storage = (*Storage)(nil)
