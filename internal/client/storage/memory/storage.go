// Package memory provides an in-process Store, used for tests and ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/accountkeeper/internal/client/storage"
)

// Storage хранит значения в памяти процесса
type Storage struct {
	values map[string][]byte
	mu     sync.RWMutex
	closed bool
}

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}

	value, ok := s.values[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value under key
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[key] = stored
	return nil
}

// Close marks the storage closed; later calls fail with ErrStorageClosed
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
