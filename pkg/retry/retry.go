// Package retry wraps a single outbound API call with bounded retries and
// exponential backoff for quota (HTTP 429) failures.
//
// Only errors the classifier marks as retryable are retried; anything else
// propagates immediately. "The upstream is temporarily overloaded" is
// recoverable, "the request is invalid or the resource is missing" is not.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

var (
	// ErrRetriesExhausted wraps the final retryable error once every
	// attempt has been consumed. Callers can still errors.As into the
	// underlying upstream error for its status code.
	ErrRetriesExhausted = errors.New("retry: attempts exhausted")

	ErrInvalidMaxAttempts = errors.New("retry: max attempts must be positive")
	ErrClassifierRequired = errors.New("retry: retryable classifier is required")
)

// Config holds the executor settings. Defaults match the observed upstream
// behavior: 3 attempts, 1s base delay doubling per attempt, 0-200ms jitter.
type Config struct {
	MaxAttempts int           `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	BaseDelay   time.Duration `env:"RETRY_BASE_DELAY" envDefault:"1s"`
	MaxJitter   time.Duration `env:"RETRY_MAX_JITTER" envDefault:"200ms"`
}

// Executor retries a call while its classifier reports the error as
// retryable. Safe for concurrent use.
type Executor struct {
	cfg       Config
	retryable func(error) bool
	sleep     func(context.Context, time.Duration) error
}

// Option configures an Executor.
type Option func(*Executor)

// WithSleepFunc replaces the backoff sleeper. Tests use it to record delays
// without waiting on the wall clock.
func WithSleepFunc(sleep func(context.Context, time.Duration) error) Option {
	return func(e *Executor) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// New creates an Executor. The classifier decides which errors are worth
// retrying; for the Google admin APIs that is the 429 quota signal.
func New(cfg Config, retryable func(error) bool, opts ...Option) (*Executor, error) {
	if cfg.MaxAttempts <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if retryable == nil {
		return nil, ErrClassifierRequired
	}

	e := &Executor{
		cfg:       cfg,
		retryable: retryable,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Do executes call with bounded retries. Delays double per attempt starting
// from BaseDelay, each with an additive uniform jitter in [0, MaxJitter).
func Do[T any](ctx context.Context, e *Executor, call func(context.Context) (T, error)) (T, error) {
	var zero T

	delay := e.cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		result, err := call(ctx)
		if err == nil {
			return result, nil
		}
		if !e.retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == e.cfg.MaxAttempts {
			break
		}

		wait := delay
		if e.cfg.MaxJitter > 0 {
			wait += time.Duration(rand.Int63n(int64(e.cfg.MaxJitter)))
		}
		if err := e.sleep(ctx, wait); err != nil {
			return zero, errors.Join(lastErr, err)
		}
		delay *= 2
	}

	return zero, errors.Join(ErrRetriesExhausted, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
