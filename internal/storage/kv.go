package storage

import (
	"context"
	"sync"
)

// KVStorage provides in-memory key/value storage for preferences.
// Nothing survives a restart; it backs tests and the "memory" storage driver.
type KVStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewKVStorage creates a new KVStorage.
func NewKVStorage() *KVStorage {
	return &KVStorage{
		values: make(map[string]string),
	}
}

// Get returns the value stored under key.
func (s *KVStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *KVStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes the given keys.
func (s *KVStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (s *KVStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
