package storage

import (
	"context"
	"sync"
)

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
	hub  *hub
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string][]byte),
		hub:  newHub(),
	}
}

// Get returns the value for key.
func (s *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(v), nil
}

// Set stores value under key.
func (s *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.data[key] = cloneBytes(value)
	s.mu.Unlock()
	return nil
}

// Inject writes value as if another device had changed it and notifies subscribers.
func (s *MemoryStorage) Inject(key string, value []byte) {
	s.mu.Lock()
	s.data[key] = cloneBytes(value)
	s.mu.Unlock()
	s.hub.publish(Change{Key: key, Value: cloneBytes(value)})
}

// Subscribe streams injected changes.
func (s *MemoryStorage) Subscribe(ctx context.Context) (<-chan Change, error) {
	return s.hub.subscribe(ctx), nil
}

// Close releases subscribers.
func (s *MemoryStorage) Close() error {
	s.hub.close()
	return nil
}
