package rescache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// Cache exposes read-through and soft-revalidate semantics over a Store.
// Safe for concurrent use if the underlying store is.
type Cache struct {
	store Store
	hook  RevalidateHook
}

// Option configures a Cache.
type Option func(*Cache)

// WithRevalidateHook registers a hook fired after every successful patch or
// eviction. Nil hooks are ignored.
func WithRevalidateHook(hook RevalidateHook) Option {
	return func(c *Cache) {
		if hook != nil {
			c.hook = hook
		}
	}
}

// New creates a Cache over the given store.
func New(store Store, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	c := &Cache{store: store}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetAll returns every cached entry for the family and tenant, or ErrMiss
// when nothing is cached.
func (c *Cache) GetAll(ctx context.Context, family Family, tenantID uuid.UUID) (map[string]json.RawMessage, error) {
	if family.Name == "" {
		return nil, ErrFamilyRequired
	}

	fields, err := c.store.GetAll(ctx, Key(family.Name, tenantID))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrMiss
	}

	entries := make(map[string]json.RawMessage, len(fields))
	for id, raw := range fields {
		entries[id] = json.RawMessage(raw)
	}
	return entries, nil
}

// WriteAll replaces the cached set for the family and tenant, one hash
// field per resource id, and arms the family TTL.
func (c *Cache) WriteAll(ctx context.Context, family Family, tenantID uuid.UUID, entries map[string]json.RawMessage) error {
	if family.Name == "" {
		return ErrFamilyRequired
	}
	if len(entries) == 0 {
		return nil
	}

	fields := make(map[string]string, len(entries))
	for id, raw := range entries {
		fields[id] = string(raw)
	}
	return c.store.SetAll(ctx, Key(family.Name, tenantID), fields, family.TTL)
}

// ReadThrough returns the cached entries, falling back to fetch on a miss
// and populating the cache with the fetched set before returning it.
func (c *Cache) ReadThrough(ctx context.Context, family Family, tenantID uuid.UUID, fetch func(context.Context) (map[string]json.RawMessage, error)) (map[string]json.RawMessage, error) {
	entries, err := c.GetAll(ctx, family, tenantID)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, ErrMiss) {
		return nil, err
	}

	entries, err = fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.WriteAll(ctx, family, tenantID, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// SoftRevalidate patches exactly the affected entries after a successful
// mutation: updated resources are rewritten in place, deleted ones evicted.
// The rest of the hash stays warm, so the next list avoids a full re-fetch.
// A cold family (never listed, or TTL expired mid-flight) is left cold: the
// patch would otherwise seed a partial hash with no expiry that later reads
// mistake for the complete set. The revalidate hook fires once a patch is
// durable.
func (c *Cache) SoftRevalidate(ctx context.Context, family Family, tenantID uuid.UUID, updated map[string]json.RawMessage, deleted []string) error {
	if family.Name == "" {
		return ErrFamilyRequired
	}
	if len(updated) == 0 && len(deleted) == 0 {
		return nil
	}

	set := make(map[string]string, len(updated))
	updatedIDs := make([]string, 0, len(updated))
	for id, raw := range updated {
		set[id] = string(raw)
		updatedIDs = append(updatedIDs, id)
	}

	applied, err := c.store.Patch(ctx, Key(family.Name, tenantID), set, deleted)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	if c.hook != nil {
		c.hook(ctx, RevalidateEvent{
			Family:   family.Name,
			TenantID: tenantID,
			Updated:  updatedIDs,
			Deleted:  deleted,
		})
	}
	return nil
}

// Invalidate drops the whole cached set for the family and tenant.
func (c *Cache) Invalidate(ctx context.Context, family Family, tenantID uuid.UUID) error {
	if family.Name == "" {
		return ErrFamilyRequired
	}
	return c.store.Delete(ctx, Key(family.Name, tenantID))
}
