// Package dashboard exposes the tenant-facing HTTP API: batched GTM and
// GA4 admin mutations through the orchestrator, cached list reads, usage
// reporting, and the signed billing webhook.
package dashboard

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tagbridge/tagbridge/pkg/rescache"
	"github.com/tagbridge/tagbridge/svc/billing"
	"github.com/tagbridge/tagbridge/svc/google"
	"github.com/tagbridge/tagbridge/svc/orchestrator"
	"github.com/tagbridge/tagbridge/svc/tier"
)

var (
	ErrEngineRequired  = errors.New("dashboard: orchestrator engine is required")
	ErrTokensRequired  = errors.New("dashboard: token provider is required")
	ErrCacheRequired   = errors.New("dashboard: cache is required")
	ErrGateRequired    = errors.New("dashboard: tier gate is required")
	ErrBillingRequired = errors.New("dashboard: billing service is required")
	ErrClientsRequired = errors.New("dashboard: google clients are required")
)

// Config holds the module settings.
type Config struct {
	WebhookSecret string        `env:"BILLING_WEBHOOK_SECRET,required"`
	WebhookMaxAge time.Duration `env:"BILLING_WEBHOOK_MAX_AGE" envDefault:"5m"`
}

// Deps are the collaborators the module routes to.
type Deps struct {
	Engine  *orchestrator.Engine
	Tokens  orchestrator.TokenProvider
	Cache   *rescache.Cache
	Gate    *tier.Gate
	Billing *billing.Service
	GTM     *google.GTMClient
	GA4     *google.GA4Client
	Logger  *slog.Logger
}

// Module is the mounted dashboard API.
type Module struct {
	cfg  Config
	deps Deps
}

// New validates the dependency set.
func New(cfg Config, deps Deps) (*Module, error) {
	switch {
	case deps.Engine == nil:
		return nil, ErrEngineRequired
	case deps.Tokens == nil:
		return nil, ErrTokensRequired
	case deps.Cache == nil:
		return nil, ErrCacheRequired
	case deps.Gate == nil:
		return nil, ErrGateRequired
	case deps.Billing == nil:
		return nil, ErrBillingRequired
	case deps.GTM == nil || deps.GA4 == nil:
		return nil, ErrClientsRequired
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Module{cfg: cfg, deps: deps}, nil
}

// Router builds the module's routes. The /v1 surface requires a tenant;
// the billing webhook authenticates by signature instead.
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(requireTenant)

		v1.Route("/gtm", func(gtm chi.Router) {
			gtm.Get("/accounts", m.listGTMAccounts())
			gtm.Put("/accounts", batchHandler(m, m.gtmAccountUpdate))

			gtm.Get("/containers", m.listGTMContainers())
			gtm.Post("/containers", batchHandler(m, m.gtmContainerCreate))
			gtm.Put("/containers", batchHandler(m, m.gtmContainerUpdate))
			gtm.Delete("/containers", batchHandler(m, m.gtmContainerDelete))

			gtm.Get("/workspaces", m.listGTMWorkspaces())
			gtm.Post("/workspaces", batchHandler(m, m.gtmWorkspaceCreate))
			gtm.Put("/workspaces", batchHandler(m, m.gtmWorkspaceUpdate))
			gtm.Delete("/workspaces", batchHandler(m, m.gtmWorkspaceDelete))

			gtm.Get("/tags", m.listGTMTags())
			gtm.Post("/tags", batchHandler(m, m.gtmTagCreate))
			gtm.Put("/tags", batchHandler(m, m.gtmTagUpdate))
			gtm.Delete("/tags", batchHandler(m, m.gtmTagDelete))

			gtm.Get("/variables", m.listGTMVariables())
			gtm.Post("/variables", batchHandler(m, m.gtmVariableCreate))
			gtm.Put("/variables", batchHandler(m, m.gtmVariableUpdate))
			gtm.Delete("/variables", batchHandler(m, m.gtmVariableDelete))
		})

		v1.Route("/ga4", func(ga4 chi.Router) {
			ga4.Get("/properties", m.listGA4Properties())
			ga4.Post("/properties", batchHandler(m, m.ga4PropertyCreate))
			ga4.Put("/properties", batchHandler(m, m.ga4PropertyUpdate))
			ga4.Delete("/properties", batchHandler(m, m.ga4PropertyDelete))

			ga4.Get("/streams", m.listGA4Streams())
			ga4.Post("/streams", batchHandler(m, m.ga4StreamCreate))
			ga4.Put("/streams", batchHandler(m, m.ga4StreamUpdate))
			ga4.Delete("/streams", batchHandler(m, m.ga4StreamDelete))

			ga4.Get("/custom-dimensions", m.listGA4CustomDimensions())
			ga4.Post("/custom-dimensions", batchHandler(m, m.ga4DimensionCreate))
			ga4.Put("/custom-dimensions", batchHandler(m, m.ga4DimensionUpdate))
			ga4.Delete("/custom-dimensions", batchHandler(m, m.ga4DimensionArchive))

			ga4.Get("/custom-metrics", m.listGA4CustomMetrics())
			ga4.Post("/custom-metrics", batchHandler(m, m.ga4MetricCreate))
			ga4.Put("/custom-metrics", batchHandler(m, m.ga4MetricUpdate))
			ga4.Delete("/custom-metrics", batchHandler(m, m.ga4MetricArchive))

			ga4.Get("/access-bindings", m.listGA4AccessBindings())
			ga4.Post("/access-bindings", batchHandler(m, m.ga4BindingCreate))
			ga4.Put("/access-bindings", batchHandler(m, m.ga4BindingUpdate))
			ga4.Delete("/access-bindings", batchHandler(m, m.ga4BindingDelete))
		})

		v1.Get("/usage", m.usage())
	})

	r.Post("/webhooks/billing", m.billingWebhook())

	return r
}
