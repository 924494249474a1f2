package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Config holds the limiter settings. The defaults stay below Google's
// published 100 requests / 100 seconds per-user admin API quota.
type Config struct {
	Limit          int           `env:"RATE_LIMIT_REQUESTS" envDefault:"90"`
	Window         time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"100s"`
	AcquireTimeout time.Duration `env:"RATE_LIMIT_ACQUIRE_TIMEOUT" envDefault:"30s"`
}

// Result describes the window state after a limiter operation.
type Result struct {
	// Allowed indicates whether the requested capacity was granted.
	Allowed bool

	// Limit is the window capacity.
	Limit int

	// Remaining is the capacity left in the current window.
	Remaining int

	// ResetAt is when the current window expires.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before capacity may free up.
// Returns 0 if the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store is the shared counter backend. Implementations must make
// IncrementIfAllowed atomic across concurrent callers and processes.
type Store interface {
	// IncrementIfAllowed counts n against the window for key only when the
	// resulting total stays within limit. It returns whether the increment
	// was applied, the current count, and the time left in the window.
	IncrementIfAllowed(ctx context.Context, key string, n, limit int, window time.Duration) (allowed bool, current int64, ttl time.Duration, err error)

	// Count returns the current count and remaining window for key.
	Count(ctx context.Context, key string) (current int64, ttl time.Duration, err error)

	// Delete resets the window for key.
	Delete(ctx context.Context, key string) error
}

// Key builds the limiter key for a tenant scoped to an upstream API family.
func Key(family string, tenantID uuid.UUID) string {
	return family + ":" + tenantID.String()
}
