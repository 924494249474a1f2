package rescache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMiss indicates the cache holds nothing for the requested key; the
	// caller should fetch from upstream and populate.
	ErrMiss = errors.New("rescache: cache miss")

	ErrStoreRequired  = errors.New("rescache: store is required")
	ErrFamilyRequired = errors.New("rescache: family name is required")
)

// Family identifies a resource family and its cache TTL. TTLs vary per
// family: frequently-edited GTM resources expire after a day, slower-moving
// GA4 ones after a week.
type Family struct {
	Name string
	TTL  time.Duration
}

// Key builds the cache key for a family and tenant.
func Key(family string, tenantID uuid.UUID) string {
	return family + ":" + tenantID.String()
}

// Store is the hash storage backend (Redis in production).
type Store interface {
	// GetAll returns every field of the hash at key. An absent key yields
	// an empty map, not an error.
	GetAll(ctx context.Context, key string) (map[string]string, error)

	// SetAll replaces the hash at key with fields and refreshes its TTL.
	SetAll(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error

	// Patch updates and deletes individual fields without touching the TTL.
	// It applies only when the key exists and reports whether it did: a
	// patch must never create a partial hash with no expiry, so an absent
	// key stays absent and the caller treats the miss as a no-op.
	Patch(ctx context.Context, key string, set map[string]string, del []string) (bool, error)

	// Delete removes the whole key.
	Delete(ctx context.Context, key string) error
}

// RevalidateEvent describes a completed cache patch. Hooks forward it to
// the UI layer so stale route caches are dropped before the next read.
type RevalidateEvent struct {
	Family   string    `json:"family"`
	TenantID uuid.UUID `json:"tenantId"`
	Updated  []string  `json:"updated,omitempty"`
	Deleted  []string  `json:"deleted,omitempty"`
}

// RevalidateHook is called after a successful soft revalidation.
type RevalidateHook func(ctx context.Context, event RevalidateEvent)
