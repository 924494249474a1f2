package rescache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbridge/tagbridge/pkg/rescache"
)

var gtmAccounts = rescache.Family{Name: "gtm:accounts", TTL: 24 * time.Hour}

func entry(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := rescache.New(nil)
	assert.ErrorIs(t, err, rescache.ErrStoreRequired)
}

func TestCacheGetAllAndWriteAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, err := rescache.New(rescache.NewMemoryStore())
	require.NoError(t, err)

	tenant := uuid.New()

	t.Run("miss on empty cache", func(t *testing.T) {
		_, err := cache.GetAll(ctx, gtmAccounts, tenant)
		assert.ErrorIs(t, err, rescache.ErrMiss)
	})

	t.Run("write then read", func(t *testing.T) {
		entries := map[string]json.RawMessage{
			"acc-1": entry(t, map[string]string{"name": "Main"}),
			"acc-2": entry(t, map[string]string{"name": "Staging"}),
		}
		require.NoError(t, cache.WriteAll(ctx, gtmAccounts, tenant, entries))

		got, err := cache.GetAll(ctx, gtmAccounts, tenant)
		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("tenants are isolated", func(t *testing.T) {
		_, err := cache.GetAll(ctx, gtmAccounts, uuid.New())
		assert.ErrorIs(t, err, rescache.ErrMiss)
	})

	t.Run("ttl expires the whole set", func(t *testing.T) {
		shortLived := rescache.Family{Name: "gtm:tags", TTL: 30 * time.Millisecond}
		require.NoError(t, cache.WriteAll(ctx, shortLived, tenant, map[string]json.RawMessage{
			"tag-1": entry(t, map[string]string{"name": "GA event"}),
		}))

		time.Sleep(60 * time.Millisecond)

		_, err := cache.GetAll(ctx, shortLived, tenant)
		assert.ErrorIs(t, err, rescache.ErrMiss)
	})
}

func TestCacheReadThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, err := rescache.New(rescache.NewMemoryStore())
	require.NoError(t, err)

	tenant := uuid.New()
	upstream := map[string]json.RawMessage{
		"acc-1": entry(t, map[string]string{"name": "Main"}),
	}

	fetches := 0
	fetch := func(context.Context) (map[string]json.RawMessage, error) {
		fetches++
		return upstream, nil
	}

	got, err := cache.ReadThrough(ctx, gtmAccounts, tenant, fetch)
	require.NoError(t, err)
	assert.Equal(t, upstream, got)
	assert.Equal(t, 1, fetches)

	// Second read is served from cache.
	got, err = cache.ReadThrough(ctx, gtmAccounts, tenant, fetch)
	require.NoError(t, err)
	assert.Equal(t, upstream, got)
	assert.Equal(t, 1, fetches)

	t.Run("fetch failure propagates without caching", func(t *testing.T) {
		wantErr := errors.New("upstream down")
		_, err := cache.ReadThrough(ctx, gtmAccounts, uuid.New(), func(context.Context) (map[string]json.RawMessage, error) {
			return nil, wantErr
		})
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestCacheSoftRevalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tenant := uuid.New()

	var events []rescache.RevalidateEvent
	cache, err := rescache.New(rescache.NewMemoryStore(), rescache.WithRevalidateHook(
		func(_ context.Context, e rescache.RevalidateEvent) { events = append(events, e) },
	))
	require.NoError(t, err)

	require.NoError(t, cache.WriteAll(ctx, gtmAccounts, tenant, map[string]json.RawMessage{
		"acc-1": entry(t, map[string]string{"name": "Main"}),
		"acc-2": entry(t, map[string]string{"name": "Staging"}),
		"acc-3": entry(t, map[string]string{"name": "Legacy"}),
	}))

	renamed := entry(t, map[string]string{"name": "Production"})
	require.NoError(t, cache.SoftRevalidate(ctx, gtmAccounts, tenant,
		map[string]json.RawMessage{"acc-1": renamed}, []string{"acc-3"}))

	got, err := cache.GetAll(ctx, gtmAccounts, tenant)
	require.NoError(t, err)

	// Read-after-write: the patched entry reflects the mutation immediately,
	// the deleted one is gone, the untouched one stays warm.
	assert.Equal(t, renamed, got["acc-1"])
	assert.NotContains(t, got, "acc-3")
	assert.Contains(t, got, "acc-2")

	require.Len(t, events, 1)
	assert.Equal(t, gtmAccounts.Name, events[0].Family)
	assert.Equal(t, tenant, events[0].TenantID)
	assert.Equal(t, []string{"acc-1"}, events[0].Updated)
	assert.Equal(t, []string{"acc-3"}, events[0].Deleted)

	t.Run("no-op patch skips store and hook", func(t *testing.T) {
		require.NoError(t, cache.SoftRevalidate(ctx, gtmAccounts, tenant, nil, nil))
		assert.Len(t, events, 1)
	})
}

func TestCacheSoftRevalidateColdFamily(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var events []rescache.RevalidateEvent
	cache, err := rescache.New(rescache.NewMemoryStore(), rescache.WithRevalidateHook(
		func(_ context.Context, e rescache.RevalidateEvent) { events = append(events, e) },
	))
	require.NoError(t, err)

	tenant := uuid.New()
	upstream := map[string]json.RawMessage{
		"acc-1": entry(t, map[string]string{"name": "Main"}),
		"acc-2": entry(t, map[string]string{"name": "Staging"}),
	}

	t.Run("never-populated family stays cold", func(t *testing.T) {
		// A mutation before the first list must not seed a hash holding only
		// the mutated entry.
		require.NoError(t, cache.SoftRevalidate(ctx, gtmAccounts, tenant,
			map[string]json.RawMessage{"acc-1": entry(t, map[string]string{"name": "Renamed"})}, nil))

		_, err := cache.GetAll(ctx, gtmAccounts, tenant)
		assert.ErrorIs(t, err, rescache.ErrMiss)
		assert.Empty(t, events)

		// The next list fetches the complete upstream set, not the subset.
		fetches := 0
		got, err := cache.ReadThrough(ctx, gtmAccounts, tenant, func(context.Context) (map[string]json.RawMessage, error) {
			fetches++
			return upstream, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, fetches)
		assert.Equal(t, upstream, got)
	})

	t.Run("expired family stays cold", func(t *testing.T) {
		shortLived := rescache.Family{Name: "gtm:containers", TTL: 30 * time.Millisecond}
		require.NoError(t, cache.WriteAll(ctx, shortLived, tenant, upstream))

		time.Sleep(60 * time.Millisecond)

		require.NoError(t, cache.SoftRevalidate(ctx, shortLived, tenant, nil, []string{"acc-2"}))

		_, err := cache.GetAll(ctx, shortLived, tenant)
		assert.ErrorIs(t, err, rescache.ErrMiss)
	})
}

func TestCacheInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache, err := rescache.New(rescache.NewMemoryStore())
	require.NoError(t, err)

	tenant := uuid.New()
	require.NoError(t, cache.WriteAll(ctx, gtmAccounts, tenant, map[string]json.RawMessage{
		"acc-1": entry(t, map[string]string{"name": "Main"}),
	}))

	require.NoError(t, cache.Invalidate(ctx, gtmAccounts, tenant))

	_, err = cache.GetAll(ctx, gtmAccounts, tenant)
	assert.ErrorIs(t, err, rescache.ErrMiss)
}
