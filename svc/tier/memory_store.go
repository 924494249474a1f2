package tier

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests. The conditional increment
// holds the same invariant as the SQL implementation.
type MemoryStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]map[Feature]*Limit
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[uuid.UUID]map[Feature]*Limit)}
}

// Get returns a copy of the limit row for a tenant and feature.
func (s *MemoryStore) Get(ctx context.Context, tenantID uuid.UUID, feature Feature) (*Limit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[tenantID][feature]
	if !ok {
		return nil, ErrNoSubscription
	}
	copied := *row
	return &copied, nil
}

// All returns copies of every limit row for a tenant.
func (s *MemoryStore) All(ctx context.Context, tenantID uuid.UUID) ([]Limit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	features := s.rows[tenantID]
	if len(features) == 0 {
		return nil, ErrNoSubscription
	}

	limits := make([]Limit, 0, len(features))
	for _, row := range features {
		limits = append(limits, *row)
	}
	sort.Slice(limits, func(i, j int) bool { return limits[i].Feature < limits[j].Feature })
	return limits, nil
}

// IncrementIfAllowed atomically bumps the usage counter when within limit.
func (s *MemoryStore) IncrementIfAllowed(ctx context.Context, tenantID uuid.UUID, feature Feature, kind OperationKind, n int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[tenantID][feature]
	if !ok {
		return false, nil
	}

	ceiling := row.Ceiling(kind)
	if ceiling != Unlimited && row.Usage(kind)+n > ceiling {
		return false, nil
	}

	switch kind {
	case OperationCreate:
		row.CreateUsage += n
	case OperationUpdate:
		row.UpdateUsage += n
	case OperationDelete:
		row.DeleteUsage += n
	default:
		return false, ErrUnknownOperation
	}
	return true, nil
}

// Provision upserts limit rows, preserving usage on existing features.
func (s *MemoryStore) Provision(ctx context.Context, tenantID uuid.UUID, limits []Limit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	features, ok := s.rows[tenantID]
	if !ok {
		features = make(map[Feature]*Limit, len(limits))
		s.rows[tenantID] = features
	}

	for _, l := range limits {
		if existing, ok := features[l.Feature]; ok {
			existing.CreateLimit = l.CreateLimit
			existing.UpdateLimit = l.UpdateLimit
			existing.DeleteLimit = l.DeleteLimit
			continue
		}
		row := l
		row.TenantID = tenantID
		features[l.Feature] = &row
	}
	return nil
}
