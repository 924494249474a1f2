package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbridge/tagbridge/pkg/ratelimit"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		store     ratelimit.Store
		cfg       ratelimit.Config
		expectErr error
	}{
		{
			name:      "nil store",
			store:     nil,
			cfg:       ratelimit.Config{Limit: 10, Window: time.Second},
			expectErr: ratelimit.ErrStoreRequired,
		},
		{
			name:      "zero limit",
			store:     ratelimit.NewMemoryStore(),
			cfg:       ratelimit.Config{Limit: 0, Window: time.Second},
			expectErr: ratelimit.ErrInvalidLimit,
		},
		{
			name:      "zero window",
			store:     ratelimit.NewMemoryStore(),
			cfg:       ratelimit.Config{Limit: 10},
			expectErr: ratelimit.ErrInvalidWindow,
		},
		{
			name:  "valid",
			store: ratelimit.NewMemoryStore(),
			cfg:   ratelimit.Config{Limit: 10, Window: time.Second},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lim, err := ratelimit.New(tt.store, tt.cfg)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, lim)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.cfg.Limit, lim.Limit())
			}
		})
	}
}

func TestLimiterAllow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lim, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 3, Window: time.Minute})
	require.NoError(t, err)

	key := ratelimit.Key("gtm", uuid.New())

	t.Run("empty key rejected", func(t *testing.T) {
		_, err := lim.Allow(ctx, "")
		assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
	})

	t.Run("capacity consumed until exhausted", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			res, err := lim.Allow(ctx, key)
			require.NoError(t, err)
			assert.True(t, res.Allowed, "request %d should be allowed", i)
			assert.Equal(t, 2-i, res.Remaining)
		}

		res, err := lim.Allow(ctx, key)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Zero(t, res.Remaining)
		assert.Positive(t, res.RetryAfter())
	})

	t.Run("independent keys do not interfere", func(t *testing.T) {
		other := ratelimit.Key("ga4", uuid.New())
		res, err := lim.Allow(ctx, other)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})
}

func TestLimiterStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lim, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 5, Window: time.Minute})
	require.NoError(t, err)

	key := ratelimit.Key("gtm", uuid.New())

	_, err = lim.AllowN(ctx, key, 2)
	require.NoError(t, err)

	before, err := lim.Status(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, before.Remaining)

	// Status must not consume capacity.
	after, err := lim.Status(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, before.Remaining, after.Remaining)
}

func TestLimiterReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lim, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: time.Minute})
	require.NoError(t, err)

	key := ratelimit.Key("gtm", uuid.New())

	res, err := lim.Allow(ctx, key)
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = lim.Allow(ctx, key)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	require.NoError(t, lim.Reset(ctx, key))

	res, err = lim.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestLimiterAcquire(t *testing.T) {
	t.Parallel()

	t.Run("immediate grant", func(t *testing.T) {
		t.Parallel()

		lim, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: time.Minute})
		require.NoError(t, err)

		res, err := lim.Acquire(context.Background(), "k", time.Second)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("times out when capacity never frees", func(t *testing.T) {
		t.Parallel()

		lim, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: time.Hour})
		require.NoError(t, err)

		_, err = lim.Allow(context.Background(), "k")
		require.NoError(t, err)

		start := time.Now()
		_, err = lim.Acquire(context.Background(), "k", 200*time.Millisecond)
		assert.ErrorIs(t, err, ratelimit.ErrAcquireTimeout)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("grants after window expiry", func(t *testing.T) {
		t.Parallel()

		lim, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: 100 * time.Millisecond})
		require.NoError(t, err)

		_, err = lim.Allow(context.Background(), "k")
		require.NoError(t, err)

		res, err := lim.Acquire(context.Background(), "k", 2*time.Second)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("context cancellation aborts the wait", func(t *testing.T) {
		t.Parallel()

		lim, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 1, Window: time.Hour})
		require.NoError(t, err)

		_, err = lim.Allow(context.Background(), "k")
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(50 * time.Millisecond)
			cancel()
		}()

		_, err = lim.Acquire(ctx, "k", time.Minute)
		assert.ErrorIs(t, err, ratelimit.ErrAcquireTimeout)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLimiterConcurrentAllow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	lim, err := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Limit: 50, Window: time.Minute})
	require.NoError(t, err)

	key := ratelimit.Key("gtm", uuid.New())

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for n := 0; n < 100; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := lim.Allow(ctx, key)
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Exactly the window capacity must have been granted, never more.
	assert.Equal(t, 50, allowed)
}
