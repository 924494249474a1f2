// Package pg manages the PostgreSQL connection pool used by the tier-limit,
// subscription, and OAuth credential stores.
//
// Connect retries transient startup failures, Migrate applies the goose
// migrations under migrations/, and Healthcheck plugs into the readiness
// endpoint.
package pg
