package ratelimit

import (
	"context"
	"errors"
	"time"
)

// maxPollInterval caps how long Acquire sleeps between capacity checks so a
// freed window is noticed promptly even when ResetAt is far away.
const maxPollInterval = 500 * time.Millisecond

// Limiter enforces a fixed capacity per rolling window against a shared
// store. Safe for concurrent use.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

// New creates a Limiter from the given store and config.
func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if cfg.Limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if cfg.Window <= 0 {
		return nil, ErrInvalidWindow
	}
	return &Limiter{store: store, limit: cfg.Limit, window: cfg.Window}, nil
}

// Limit returns the configured window capacity. The orchestrator uses it to
// verify the local throttle ceiling never exceeds the distributed burst.
func (l *Limiter) Limit() int { return l.limit }

// Allow attempts to consume one slot for key without blocking.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN attempts to consume n slots for key without blocking.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if n <= 0 {
		n = 1
	}

	allowed, current, ttl, err := l.store.IncrementIfAllowed(ctx, key, n, l.limit, l.window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   allowed,
		Limit:     l.limit,
		Remaining: max(0, l.limit-int(current)),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Acquire blocks until one slot is granted for key or timeout elapses.
// Waiting is cooperative: the goroutine sleeps until the window is expected
// to free capacity, re-checking at least every maxPollInterval. Context
// cancellation aborts the wait immediately.
func (l *Limiter) Acquire(ctx context.Context, key string, timeout time.Duration) (*Result, error) {
	deadline := time.Now().Add(timeout)

	for {
		res, err := l.AllowN(ctx, key, 1)
		if err != nil {
			return nil, err
		}
		if res.Allowed {
			return res, nil
		}

		wait := res.RetryAfter()
		if wait <= 0 || wait > maxPollInterval {
			wait = maxPollInterval
		}
		if remaining := time.Until(deadline); remaining <= 0 {
			return nil, ErrAcquireTimeout
		} else if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Join(ErrAcquireTimeout, ctx.Err())
		case <-timer.C:
		}

		if !time.Now().Before(deadline) {
			return nil, ErrAcquireTimeout
		}
	}
}

// Status reads the current window for key without consuming capacity.
func (l *Limiter) Status(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	current, ttl, err := l.store.Count(ctx, key)
	if err != nil {
		return nil, err
	}

	remaining := max(0, l.limit-int(current))
	return &Result{
		Allowed:   remaining > 0,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Reset clears the window for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return l.store.Delete(ctx, key)
}
