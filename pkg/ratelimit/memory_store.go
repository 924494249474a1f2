package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node setups. It
// mirrors the fixed-window semantics of RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window)}
}

// IncrementIfAllowed atomically counts n against the window for key.
func (s *MemoryStore) IncrementIfAllowed(ctx context.Context, key string, n, limit int, ttl time.Duration) (bool, int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		w = &window{expiresAt: now.Add(ttl)}
		s.windows[key] = w
	}

	if w.count+int64(n) > int64(limit) {
		return false, w.count, time.Until(w.expiresAt), nil
	}

	w.count += int64(n)
	return true, w.count, time.Until(w.expiresAt), nil
}

// Count returns the current counter and remaining window for key.
func (s *MemoryStore) Count(ctx context.Context, key string) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || time.Now().After(w.expiresAt) {
		return 0, 0, nil
	}
	return w.count, time.Until(w.expiresAt), nil
}

// Delete resets the window for key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
	return nil
}
