package billing

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store persists subscriptions keyed by tenant.
type Store interface {
	// Get returns the tenant's subscription, or ErrNoSubscription.
	Get(ctx context.Context, tenantID uuid.UUID) (Subscription, error)
	// Upsert inserts or replaces the tenant's subscription.
	Upsert(ctx context.Context, sub Subscription) error
}

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]Subscription
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[uuid.UUID]Subscription)}
}

func (s *MemoryStore) Get(ctx context.Context, tenantID uuid.UUID) (Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[tenantID]
	if !ok {
		return Subscription{}, ErrNoSubscription
	}
	return sub, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, sub Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.TenantID] = sub
	return nil
}
