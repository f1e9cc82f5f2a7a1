// Package store is the persistence substrate: one named slot holding one
// serialized blob of the whole character collection.
package store

import (
	"context"
	"sync"
)

// BlobStore persists opaque blobs under string keys.
type BlobStore interface {
	// Get returns the blob under key, or nil with no error when the slot is empty.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the blob under key.
	Set(ctx context.Context, key string, blob []byte) error

	// Clear empties the slot.
	Clear(ctx context.Context, key string) error
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, blob...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte{}, blob...)
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
