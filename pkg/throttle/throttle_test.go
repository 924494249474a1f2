package throttle_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbridge/tagbridge/pkg/throttle"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("zero concurrency rejected", func(t *testing.T) {
		t.Parallel()
		_, err := throttle.New(throttle.Config{Concurrency: 0})
		assert.ErrorIs(t, err, throttle.ErrInvalidConcurrency)
	})

	t.Run("negative spacing rejected", func(t *testing.T) {
		t.Parallel()
		_, err := throttle.New(throttle.Config{Concurrency: 1, MinSpacing: -time.Second})
		assert.ErrorIs(t, err, throttle.ErrInvalidSpacing)
	})

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		th, err := throttle.New(throttle.Config{Concurrency: 3, MinSpacing: time.Millisecond})
		require.NoError(t, err)
		assert.Equal(t, 3, th.Concurrency())
	})
}

func TestThrottleCapsConcurrency(t *testing.T) {
	t.Parallel()

	th, err := throttle.New(throttle.Config{Concurrency: 2})
	require.NoError(t, err)

	var inFlight, peak atomic.Int32
	var wg sync.WaitGroup

	for n := 0; n < 10; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = th.Do(context.Background(), func() error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestThrottleMinSpacing(t *testing.T) {
	t.Parallel()

	th, err := throttle.New(throttle.Config{Concurrency: 4, MinSpacing: 50 * time.Millisecond})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var starts []time.Time

	for n := 0; n < 3; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = th.Do(context.Background(), func() error {
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	require.Len(t, starts, 3)
	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(starts); i++ {
		for j := 0; j < i; j++ {
			gap := starts[i].Sub(starts[j])
			if gap < 0 {
				gap = -gap
			}
			assert.GreaterOrEqual(t, gap, 40*time.Millisecond, "dispatches %d and %d too close", j, i)
		}
	}
}

func TestThrottleContextCancellation(t *testing.T) {
	t.Parallel()

	th, err := throttle.New(throttle.Config{Concurrency: 1})
	require.NoError(t, err)

	block := make(chan struct{})
	go func() {
		_ = th.Do(context.Background(), func() error {
			<-block
			return nil
		})
	}()

	// Give the blocking task time to take the only slot.
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = th.Do(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(block)
}

func TestSchedule(t *testing.T) {
	t.Parallel()

	th, err := throttle.New(throttle.Config{Concurrency: 1})
	require.NoError(t, err)

	t.Run("returns task result", func(t *testing.T) {
		got, err := throttle.Schedule(context.Background(), th, func() (string, error) {
			return "created", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "created", got)
	})

	t.Run("propagates task error", func(t *testing.T) {
		wantErr := errors.New("upstream exploded")
		_, err := throttle.Schedule(context.Background(), th, func() (string, error) {
			return "", wantErr
		})
		assert.ErrorIs(t, err, wantErr)
	})
}
