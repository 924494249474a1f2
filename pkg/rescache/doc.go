// Package rescache is the per-tenant, per-resource-family cache of upstream
// objects.
//
// Each cache key is "{family}:{tenantID}" holding a hash of resource
// natural id to the JSON-serialized upstream object, expiring after the
// family's TTL. List operations read through the cache; mutations patch
// only the affected hash fields ("soft revalidate") instead of flushing the
// whole key, which would cause a re-fetch storm right after every write.
//
// An optional revalidation hook fires after each successful patch so the
// UI edge can drop its own route caches.
package rescache
