package rescache

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	hashes map[string]*hashEntry
}

type hashEntry struct {
	fields    map[string]string
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hashes: make(map[string]*hashEntry)}
}

func (s *MemoryStore) live(key string) *hashEntry {
	h, ok := s.hashes[key]
	if !ok {
		return nil
	}
	if !h.expiresAt.IsZero() && time.Now().After(h.expiresAt) {
		delete(s.hashes, key)
		return nil
	}
	return h
}

// GetAll returns a copy of every field of the hash at key.
func (s *MemoryStore) GetAll(ctx context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.live(key)
	if h == nil {
		return map[string]string{}, nil
	}

	out := make(map[string]string, len(h.fields))
	maps.Copy(out, h.fields)
	return out, nil
}

// SetAll replaces the hash at key and arms its TTL.
func (s *MemoryStore) SetAll(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &hashEntry{fields: make(map[string]string, len(fields))}
	maps.Copy(h.fields, fields)
	if ttl > 0 {
		h.expiresAt = time.Now().Add(ttl)
	}
	s.hashes[key] = h
	return nil
}

// Patch updates and deletes individual fields without touching the TTL.
// A missing or expired key is reported as not applied and left absent.
func (s *MemoryStore) Patch(ctx context.Context, key string, set map[string]string, del []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.live(key)
	if h == nil {
		return false, nil
	}

	maps.Copy(h.fields, set)
	for _, id := range del {
		delete(h.fields, id)
	}
	return true, nil
}

// Delete removes the whole key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.hashes, key)
	return nil
}
