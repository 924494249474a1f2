// Package orchestrator runs batched admin mutations against the Google
// APIs under the full policy stack: token resolution, tier admission,
// distributed rate limiting, throttled fan-out with bounded retries,
// per-item usage accounting, and soft cache revalidation.
//
// An orchestrated action never returns an error to its caller. Every
// failure mode folds into the FeatureResponse so the UI renders mixed
// outcomes from one shape.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tagbridge/tagbridge/pkg/ratelimit"
	"github.com/tagbridge/tagbridge/pkg/rescache"
	"github.com/tagbridge/tagbridge/pkg/retry"
	"github.com/tagbridge/tagbridge/pkg/throttle"
	"github.com/tagbridge/tagbridge/svc/google"
	"github.com/tagbridge/tagbridge/svc/tier"
)

var (
	ErrTokensRequired   = errors.New("orchestrator: token provider is required")
	ErrLimiterRequired  = errors.New("orchestrator: rate limiter is required")
	ErrGateRequired     = errors.New("orchestrator: tier gate is required")
	ErrThrottleRequired = errors.New("orchestrator: throttle is required")
	ErrRetrierRequired  = errors.New("orchestrator: retry executor is required")
	ErrCacheRequired    = errors.New("orchestrator: cache is required")

	// ErrThrottleExceedsLimiter rejects a configuration whose local burst
	// ceiling is wider than the distributed window capacity. Such a setup
	// would let one batch consume the whole tenant quota in a single wave.
	ErrThrottleExceedsLimiter = errors.New("orchestrator: throttle concurrency exceeds rate limiter capacity")
)

// TokenProvider resolves a live Google access token for a tenant.
type TokenProvider interface {
	Token(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// Config holds engine-level settings.
type Config struct {
	// AcquireTimeout bounds the blocking wait for distributed rate-limiter
	// capacity. On expiry the whole batch fails before any dispatch.
	AcquireTimeout time.Duration `env:"ORCHESTRATOR_ACQUIRE_TIMEOUT" envDefault:"30s"`
}

// Deps are the collaborators an Engine composes. All are required except
// Logger.
type Deps struct {
	Tokens   TokenProvider
	Limiter  *ratelimit.Limiter
	Gate     *tier.Gate
	Throttle *throttle.Throttle
	Retrier  *retry.Executor
	Cache    *rescache.Cache
	Logger   *slog.Logger
}

// Engine executes orchestrated actions. Safe for concurrent use.
type Engine struct {
	cfg  Config
	deps Deps
}

// NewEngine validates the dependency set and the throttle/limiter coupling.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	switch {
	case deps.Tokens == nil:
		return nil, ErrTokensRequired
	case deps.Limiter == nil:
		return nil, ErrLimiterRequired
	case deps.Gate == nil:
		return nil, ErrGateRequired
	case deps.Throttle == nil:
		return nil, ErrThrottleRequired
	case deps.Retrier == nil:
		return nil, ErrRetrierRequired
	case deps.Cache == nil:
		return nil, ErrCacheRequired
	}
	if deps.Throttle.Concurrency() > deps.Limiter.Limit() {
		return nil, ErrThrottleExceedsLimiter
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 30 * time.Second
	}
	return &Engine{cfg: cfg, deps: deps}, nil
}

// Applied is the identity and cache payload of one successfully mutated
// resource. Deleted resources carry no payload and are evicted instead of
// patched.
type Applied struct {
	ID      string
	Name    string
	Payload json.RawMessage
	Deleted bool
}

// Operation describes one feature action over form type F. The descriptor
// binds together the tier feature, the limiter family sharing the upstream
// quota, the cache family, local shape validation, and the single upstream
// call per item.
type Operation[F any] struct {
	Feature       tier.Feature
	Kind          tier.OperationKind
	LimiterFamily string
	CacheFamily   rescache.Family
	Validate      func(F) error
	Call          func(ctx context.Context, token string, form F) (Applied, error)
}

// Execute runs the batch state machine: authenticate, admit, reserve rate
// capacity, fan out per item, account usage per success, patch the cache,
// and reduce the tagged outcomes into one response.
func Execute[F any](ctx context.Context, e *Engine, op Operation[F], tenantID uuid.UUID, forms []F) FeatureResponse {
	log := e.deps.Logger.With(
		slog.String("tenant_id", tenantID.String()),
		slog.String("feature", string(op.Feature)),
		slog.String("operation", string(op.Kind)),
		slog.Int("batch_size", len(forms)),
	)

	// Authentication failures are fatal before any quota is consumed.
	token, err := e.deps.Tokens.Token(ctx, tenantID)
	if err != nil {
		log.WarnContext(ctx, "token resolution failed", slog.String("error", err.Error()))
		return failure("authentication required", err)
	}

	// Admission control: reject the whole batch before any side effect when
	// the requested count exceeds the remaining headroom.
	admission, err := e.deps.Gate.Check(ctx, tenantID, op.Feature, op.Kind, len(forms))
	if err != nil {
		log.WarnContext(ctx, "tier admission failed", slog.String("error", err.Error()))
		return failure("subscription required", err)
	}
	if !admission.Allowed {
		log.InfoContext(ctx, "batch rejected by tier limit",
			slog.Int64("available", admission.Available))
		resp := failure("feature limit reached", nil)
		resp.LimitReached = true
		return resp
	}

	// One distributed reservation per batch, not per item.
	limiterKey := ratelimit.Key(op.LimiterFamily, tenantID)
	if _, err := e.deps.Limiter.Acquire(ctx, limiterKey, e.cfg.AcquireTimeout); err != nil {
		log.WarnContext(ctx, "rate limiter acquisition failed", slog.String("error", err.Error()))
		return failure("rate limit capacity unavailable", err)
	}

	// Fan out. Each worker writes only its own index; aggregation is
	// deferred to the reducer.
	outcomes := make([]Outcome, len(forms))
	applied := make([]*Applied, len(forms))

	var wg sync.WaitGroup
	for i, form := range forms {
		i, form := i, form
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i], applied[i] = dispatch(ctx, e, op, token, form)
		}()
	}
	wg.Wait()

	// Usage accounting is per applied item and conditional at the store, so
	// concurrent batches that both passed admission cannot jointly overshoot.
	// An item whose increment is refused is reported as limit-reached even
	// though the upstream mutation went through.
	updated := make(map[string]json.RawMessage)
	var deleted []string
	for i := range outcomes {
		if outcomes[i].Kind != OutcomeSuccess {
			continue
		}
		ok, err := e.deps.Gate.Consume(ctx, tenantID, op.Feature, op.Kind)
		if err != nil {
			outcomes[i] = Outcome{Kind: OutcomeError, ID: outcomes[i].ID, Name: outcomes[i].Name, Err: err}
			continue
		}
		if !ok {
			outcomes[i].Kind = OutcomeLimitReached
			continue
		}
		if a := applied[i]; a != nil {
			if a.Deleted {
				deleted = append(deleted, a.ID)
			} else if a.Payload != nil {
				updated[a.ID] = a.Payload
			}
		}
	}

	if len(updated) > 0 || len(deleted) > 0 {
		if err := e.deps.Cache.SoftRevalidate(ctx, op.CacheFamily, tenantID, updated, deleted); err != nil {
			// A failed patch must not leave entries older than the mutation;
			// dropping the whole set restores read-after-write on the next
			// list.
			log.ErrorContext(ctx, "cache revalidation failed, invalidating",
				slog.String("error", err.Error()))
			if err := e.deps.Cache.Invalidate(ctx, op.CacheFamily, tenantID); err != nil {
				log.ErrorContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
			}
		}
	}

	resp := Reduce(outcomes)
	log.InfoContext(ctx, "batch completed",
		slog.Bool("success", resp.Success),
		slog.Bool("limit_reached", resp.LimitReached),
		slog.Bool("not_found", resp.NotFoundError),
		slog.Int("errors", len(resp.Errors)),
	)
	return resp
}

// dispatch validates and applies one item, classifying the error into a
// tagged outcome. Validation failures are local and never reach the network.
// The throttle slot is held across retries so backoff never widens the
// in-flight burst.
func dispatch[F any](ctx context.Context, e *Engine, op Operation[F], token string, form F) (Outcome, *Applied) {
	if op.Validate != nil {
		if err := op.Validate(form); err != nil {
			return Outcome{Kind: OutcomeError, Err: err}, nil
		}
	}

	a, err := throttle.Schedule(ctx, e.deps.Throttle, func() (Applied, error) {
		return retry.Do(ctx, e.deps.Retrier, func(ctx context.Context) (Applied, error) {
			return op.Call(ctx, token, form)
		})
	})
	if err != nil {
		switch {
		case google.IsNotFound(err):
			return Outcome{Kind: OutcomeNotFound, Err: err}, nil
		case google.IsFeatureLimit(err):
			return Outcome{Kind: OutcomeLimitReached, Err: err}, nil
		default:
			return Outcome{Kind: OutcomeError, Err: err}, nil
		}
	}
	return Outcome{Kind: OutcomeSuccess, ID: a.ID, Name: a.Name}, &a
}
