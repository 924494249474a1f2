package token

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	creds map[uuid.UUID]Credential
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{creds: make(map[uuid.UUID]Credential)}
}

// Get returns the credential for a tenant, or ErrNoCredential.
func (s *MemoryStore) Get(ctx context.Context, tenantID uuid.UUID) (*Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[tenantID]
	if !ok {
		return nil, ErrNoCredential
	}
	copied := cred
	return &copied, nil
}

// Save upserts the credential for its tenant.
func (s *MemoryStore) Save(ctx context.Context, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[cred.TenantID] = *cred
	return nil
}
