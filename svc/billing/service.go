package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tagbridge/tagbridge/svc/tier"
)

// Event types accepted on the billing webhook.
const (
	EventSubscriptionTrial     = "subscription.trial_started"
	EventSubscriptionCreated   = "subscription.created"
	EventSubscriptionUpdated   = "subscription.updated"
	EventSubscriptionPastDue   = "subscription.past_due"
	EventSubscriptionCancelled = "subscription.cancelled"
	EventSubscriptionExpired   = "subscription.expired"
)

// Event is the decoded billing webhook payload.
type Event struct {
	Type          string    `json:"type"`
	TenantID      uuid.UUID `json:"tenant_id"`
	PlanID        string    `json:"plan_id"`
	ProviderSubID string    `json:"provider_sub_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// LimitProvisioner writes plan limits for a tenant, preserving usage.
// Satisfied by tier.Store.
type LimitProvisioner interface {
	Provision(ctx context.Context, tenantID uuid.UUID, limits []tier.Limit) error
}

// Service applies billing events to the subscription store and the tier
// limits.
type Service struct {
	store   Store
	catalog tier.Source
	limits  LimitProvisioner
	log     *slog.Logger
}

// NewService wires the service. All dependencies are required.
func NewService(store Store, catalog tier.Source, limits LimitProvisioner, log *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if catalog == nil {
		return nil, ErrCatalogRequired
	}
	if limits == nil {
		return nil, ErrProvisionRequired
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, catalog: catalog, limits: limits, log: log}, nil
}

// Subscription returns the tenant's current subscription.
func (s *Service) Subscription(ctx context.Context, tenantID uuid.UUID) (Subscription, error) {
	return s.store.Get(ctx, tenantID)
}

// ApplyEvent updates the subscription record for the event and, on plan
// creation or change, provisions the plan's tier limits. Provisioning
// preserves existing usage counters, so re-delivered events are safe.
func (s *Service) ApplyEvent(ctx context.Context, event Event) error {
	if event.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidEvent)
	}

	status, provisionPlan, err := s.classify(event)
	if err != nil {
		return err
	}

	sub, err := s.store.Get(ctx, event.TenantID)
	if err == nil {
		sub.Status = status
		if event.PlanID != "" {
			sub.PlanID = event.PlanID
		}
		if event.ProviderSubID != "" {
			sub.ProviderSubID = event.ProviderSubID
		}
	} else {
		sub = Subscription{
			TenantID:      event.TenantID,
			PlanID:        event.PlanID,
			Status:        status,
			ProviderSubID: event.ProviderSubID,
		}
	}
	if status == StatusCancelled && sub.CancelledAt == nil {
		at := event.OccurredAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		sub.CancelledAt = &at
	}

	if err := s.store.Upsert(ctx, sub); err != nil {
		return err
	}

	if provisionPlan {
		if err := s.provision(ctx, event.TenantID, sub.PlanID); err != nil {
			return err
		}
	}

	s.log.InfoContext(ctx, "billing event applied",
		slog.String("type", event.Type),
		slog.String("tenant_id", event.TenantID.String()),
		slog.String("plan_id", sub.PlanID),
		slog.String("status", string(sub.Status)),
	)
	return nil
}

// classify maps an event type to the resulting status and whether tier
// limits must be (re)provisioned.
func (s *Service) classify(event Event) (Status, bool, error) {
	switch event.Type {
	case EventSubscriptionTrial, EventSubscriptionCreated, EventSubscriptionUpdated:
		if event.PlanID == "" {
			return "", false, fmt.Errorf("%w: plan_id is required for %s", ErrInvalidEvent, event.Type)
		}
		if event.Type == EventSubscriptionTrial {
			return StatusTrialing, true, nil
		}
		return StatusActive, true, nil
	case EventSubscriptionPastDue:
		return StatusPastDue, false, nil
	case EventSubscriptionCancelled:
		return StatusCancelled, false, nil
	case EventSubscriptionExpired:
		return StatusExpired, false, nil
	default:
		return "", false, fmt.Errorf("%w: %q", ErrUnknownEventType, event.Type)
	}
}

func (s *Service) provision(ctx context.Context, tenantID uuid.UUID, planID string) error {
	plans, err := s.catalog.Load(ctx)
	if err != nil {
		return err
	}
	plan, ok := plans[planID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}
	return s.limits.Provision(ctx, tenantID, plan.TierLimits(tenantID))
}
