// Package ratelimit implements a distributed, per-tenant rate limiter that
// gates outbound calls to an upstream API family.
//
// The limiter counts requests in a rolling window against a shared store
// (Redis in production, in-memory for tests), so capacity is enforced
// across all processes serving the same tenant. Keys combine the upstream
// API family with the tenant id because each family (GTM, GA4) has an
// independent upstream quota:
//
//	lim, _ := ratelimit.New(store, ratelimit.Config{Limit: 90, Window: 100 * time.Second})
//	res, err := lim.Acquire(ctx, ratelimit.Key("gtm", tenantID), 30*time.Second)
//
// Acquire blocks cooperatively until capacity frees or the timeout elapses,
// at which point it fails with ErrAcquireTimeout rather than letting the
// call proceed. Allow/AllowN are the non-blocking primitives; Status reads
// the current window without consuming capacity.
package ratelimit
