// Package throttle caps in-process concurrency of outbound upstream calls
// and enforces a minimum spacing between dispatches.
//
// The distributed rate limiter protects the long-term per-tenant quota; the
// throttle smooths the instantaneous burst a single batch can produce when
// it fans out across many items in one request.
package throttle

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrInvalidConcurrency = errors.New("throttle: concurrency must be positive")
	ErrInvalidSpacing     = errors.New("throttle: min spacing must not be negative")
)

// Config holds the throttle settings. The defaults keep local bursts in the
// low single digits, matching upstream instantaneous throttling behavior.
type Config struct {
	Concurrency int           `env:"THROTTLE_CONCURRENCY" envDefault:"3"`
	MinSpacing  time.Duration `env:"THROTTLE_MIN_SPACING" envDefault:"100ms"`
}

// Throttle is an in-process scheduler for units of work that each perform
// exactly one outbound HTTP call. Safe for concurrent use.
type Throttle struct {
	sem         chan struct{}
	spacing     *rate.Limiter
	concurrency int
}

// New creates a Throttle from the given config.
func New(cfg Config) (*Throttle, error) {
	if cfg.Concurrency <= 0 {
		return nil, ErrInvalidConcurrency
	}
	if cfg.MinSpacing < 0 {
		return nil, ErrInvalidSpacing
	}

	t := &Throttle{
		sem:         make(chan struct{}, cfg.Concurrency),
		concurrency: cfg.Concurrency,
	}
	if cfg.MinSpacing > 0 {
		t.spacing = rate.NewLimiter(rate.Every(cfg.MinSpacing), 1)
	}
	return t, nil
}

// Concurrency returns the in-flight ceiling. The orchestrator verifies at
// construction that it never exceeds the distributed limiter's capacity.
func (t *Throttle) Concurrency() int { return t.concurrency }

// Do runs task once a concurrency slot and a dispatch token are available.
// The caller's context aborts the wait; a task that has started always runs
// to completion.
func (t *Throttle) Do(ctx context.Context, task func() error) error {
	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-t.sem }()

	if t.spacing != nil {
		if err := t.spacing.Wait(ctx); err != nil {
			return err
		}
	}

	return task()
}

// Schedule runs task through the throttle and returns its result.
func Schedule[T any](ctx context.Context, t *Throttle, task func() (T, error)) (T, error) {
	var result T
	err := t.Do(ctx, func() error {
		var taskErr error
		result, taskErr = task()
		return taskErr
	})
	return result, err
}
