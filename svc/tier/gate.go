package tier

import (
	"context"

	"github.com/google/uuid"
)

// Store persists tier-limit rows.
type Store interface {
	// Get returns the limit row for a tenant and feature, or
	// ErrNoSubscription when none exists.
	Get(ctx context.Context, tenantID uuid.UUID, feature Feature) (*Limit, error)

	// All returns every limit row for a tenant.
	All(ctx context.Context, tenantID uuid.UUID) ([]Limit, error)

	// IncrementIfAllowed adds n to the usage counter for the operation
	// kind only when the result stays within the limit (or the limit is
	// Unlimited). The check and the increment are one atomic step.
	IncrementIfAllowed(ctx context.Context, tenantID uuid.UUID, feature Feature, kind OperationKind, n int64) (bool, error)

	// Provision replaces the tenant's limit rows with the given set,
	// preserving existing usage counters where a feature already exists.
	Provision(ctx context.Context, tenantID uuid.UUID, limits []Limit) error
}

// Admission is the result of the up-front batch check.
type Admission struct {
	Limit     *Limit
	Available int64
	Allowed   bool
}

// Gate is the admission and accounting façade used by orchestrated actions.
type Gate struct {
	store Store
}

// NewGate creates a Gate over the given store.
func NewGate(store Store) (*Gate, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	return &Gate{store: store}, nil
}

// Check reads the tenant's limit row and decides whether a batch of
// requested items may be admitted for the operation kind. The check happens
// before any upstream side effect; a rejected batch makes zero network
// calls. The answer can go stale under concurrent batches, which is why
// Consume re-checks atomically per applied item.
func (g *Gate) Check(ctx context.Context, tenantID uuid.UUID, feature Feature, kind OperationKind, requested int) (*Admission, error) {
	limit, err := g.store.Get(ctx, tenantID, feature)
	if err != nil {
		return nil, err
	}

	available := limit.Available(kind)
	return &Admission{
		Limit:     limit,
		Available: available,
		Allowed:   available == Unlimited || int64(requested) <= available,
	}, nil
}

// Consume counts one successfully-applied item against the tenant's usage.
// The conditional increment is atomic at the store, so two concurrent
// batches that both passed Check cannot jointly exceed the ceiling.
func (g *Gate) Consume(ctx context.Context, tenantID uuid.UUID, feature Feature, kind OperationKind) (bool, error) {
	return g.store.IncrementIfAllowed(ctx, tenantID, feature, kind, 1)
}

// Usage returns every feature's counters for the tenant, for dashboards.
func (g *Gate) Usage(ctx context.Context, tenantID uuid.UUID) (map[Feature]FeatureUsage, error) {
	limits, err := g.store.All(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := make(map[Feature]FeatureUsage, len(limits))
	for _, l := range limits {
		out[l.Feature] = FeatureUsage{
			Create: UsageInfo{Usage: l.CreateUsage, Limit: l.CreateLimit},
			Update: UsageInfo{Usage: l.UpdateUsage, Limit: l.UpdateLimit},
			Delete: UsageInfo{Usage: l.DeleteUsage, Limit: l.DeleteLimit},
		}
	}
	return out, nil
}
