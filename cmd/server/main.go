// Command server runs the tagbridge API: batched Google Tag Manager and
// GA4 admin operations behind per-tenant rate limiting, tier enforcement,
// and a Redis-backed resource cache.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"github.com/tagbridge/tagbridge/modules/dashboard"
	"github.com/tagbridge/tagbridge/pkg/config"
	"github.com/tagbridge/tagbridge/pkg/httpserver"
	"github.com/tagbridge/tagbridge/pkg/logger"
	"github.com/tagbridge/tagbridge/pkg/pg"
	"github.com/tagbridge/tagbridge/pkg/ratelimit"
	"github.com/tagbridge/tagbridge/pkg/redis"
	"github.com/tagbridge/tagbridge/pkg/rescache"
	"github.com/tagbridge/tagbridge/pkg/retry"
	"github.com/tagbridge/tagbridge/pkg/throttle"
	"github.com/tagbridge/tagbridge/svc/billing"
	"github.com/tagbridge/tagbridge/svc/google"
	"github.com/tagbridge/tagbridge/svc/orchestrator"
	"github.com/tagbridge/tagbridge/svc/tier"
	"github.com/tagbridge/tagbridge/svc/token"
)

type appConfig struct {
	Logger    logger.Config
	Server    httpserver.Config
	Redis     redis.Config
	Postgres  pg.Config
	Google    google.Config
	RateLimit ratelimit.Config
	Throttle  throttle.Config
	Retry     retry.Config
	Orch      orchestrator.Config
	Dashboard dashboard.Config

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`
	PlanCatalogPath    string `env:"PLAN_CATALOG_PATH" envDefault:"plans.yaml"`
}

func main() {
	cfg := config.MustLoad[appConfig]()
	log := logger.NewFromConfig(cfg.Logger, logger.WithService("tagbridge"))

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
		return err
	}

	limiterStore, err := ratelimit.NewRedisStore(redisClient)
	if err != nil {
		return err
	}
	limiter, err := ratelimit.New(limiterStore, cfg.RateLimit)
	if err != nil {
		return err
	}

	thr, err := throttle.New(cfg.Throttle)
	if err != nil {
		return err
	}

	retrier, err := retry.New(cfg.Retry, google.IsQuota)
	if err != nil {
		return err
	}

	cacheStore, err := rescache.NewRedisStore(redisClient)
	if err != nil {
		return err
	}
	cache, err := rescache.New(cacheStore,
		rescache.WithRevalidateHook(rescache.NewRedisRevalidateHook(redisClient)))
	if err != nil {
		return err
	}

	tokens, err := token.NewProvider(token.NewPgStore(pool), &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     googleoauth.Endpoint,
	})
	if err != nil {
		return err
	}

	tierStore := tier.NewPgStore(pool)
	gate, err := tier.NewGate(tierStore)
	if err != nil {
		return err
	}

	billingSvc, err := billing.NewService(
		billing.NewPgStore(pool),
		tier.FileSource{Path: cfg.PlanCatalogPath},
		tierStore,
		log,
	)
	if err != nil {
		return err
	}

	engine, err := orchestrator.NewEngine(cfg.Orch, orchestrator.Deps{
		Tokens:   tokens,
		Limiter:  limiter,
		Gate:     gate,
		Throttle: thr,
		Retrier:  retrier,
		Cache:    cache,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	module, err := dashboard.New(cfg.Dashboard, dashboard.Deps{
		Engine:  engine,
		Tokens:  tokens,
		Cache:   cache,
		Gate:    gate,
		Billing: billingSvc,
		GTM:     google.NewGTMClient(cfg.Google),
		GA4:     google.NewGA4Client(cfg.Google),
		Logger:  log,
	})
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/health/live", httpserver.HealthHandler(log))
	router.Get("/health/ready", httpserver.HealthHandler(log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))
	router.Mount("/", module.Router())

	srv := httpserver.New(cfg.Server, log)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx, router) })
	return g.Wait()
}
