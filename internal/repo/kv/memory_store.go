package kv

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	closed  bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, ErrStoreClosed
	}

	value, ok := s.records[key]

	return slices.Clone(value), ok, nil
}

// Set implements Store.Set.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	s.records[key] = slices.Clone(value)

	return nil
}

// Remove implements Store.Remove.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	delete(s.records, key)

	return nil
}

// Keys implements Store.Keys.
func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	keys := make([]string, 0, len(s.records))

	for key := range s.records {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}

	slices.Sort(keys)

	return keys, nil
}

// Close implements Store.Close.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.records = nil

	return nil
}
