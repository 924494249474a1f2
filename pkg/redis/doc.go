// Package redis establishes go-redis client connections with startup retry
// and exposes a healthcheck suitable for readiness probes.
//
// The rate limiter store and the resource cache both share one client; the
// process entry point owns its lifecycle.
package redis
