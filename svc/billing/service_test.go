package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbridge/tagbridge/svc/billing"
	"github.com/tagbridge/tagbridge/svc/tier"
)

var testCatalog = tier.StaticSource{
	"starter": {
		ID:   "starter",
		Name: "Starter",
		Limits: map[tier.Feature]tier.OperationLimits{
			tier.FeatureGTMContainer: {Create: 3, Update: 30, Delete: 3},
		},
	},
	"agency": {
		ID:   "agency",
		Name: "Agency",
		Limits: map[tier.Feature]tier.OperationLimits{
			tier.FeatureGTMContainer: {Create: tier.Unlimited, Update: tier.Unlimited, Delete: tier.Unlimited},
		},
	},
}

func newService(t *testing.T) (*billing.Service, *billing.MemoryStore, *tier.MemoryStore) {
	t.Helper()
	subs := billing.NewMemoryStore()
	limits := tier.NewMemoryStore()
	svc, err := billing.NewService(subs, testCatalog, limits, nil)
	require.NoError(t, err)
	return svc, subs, limits
}

func TestNewService(t *testing.T) {
	t.Parallel()

	_, err := billing.NewService(nil, testCatalog, tier.NewMemoryStore(), nil)
	assert.ErrorIs(t, err, billing.ErrStoreRequired)

	_, err = billing.NewService(billing.NewMemoryStore(), nil, tier.NewMemoryStore(), nil)
	assert.ErrorIs(t, err, billing.ErrCatalogRequired)

	_, err = billing.NewService(billing.NewMemoryStore(), testCatalog, nil, nil)
	assert.ErrorIs(t, err, billing.ErrProvisionRequired)
}

func TestApplyEventCreated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, limits := newService(t)
	tenantID := uuid.New()

	err := svc.ApplyEvent(ctx, billing.Event{
		Type:          billing.EventSubscriptionCreated,
		TenantID:      tenantID,
		PlanID:        "starter",
		ProviderSubID: "sub_123",
	})
	require.NoError(t, err)

	sub, err := svc.Subscription(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusActive, sub.Status)
	assert.Equal(t, "starter", sub.PlanID)
	assert.True(t, sub.Entitled())

	limit, err := limits.Get(ctx, tenantID, tier.FeatureGTMContainer)
	require.NoError(t, err)
	assert.EqualValues(t, 3, limit.CreateLimit)
	assert.Zero(t, limit.CreateUsage)
}

func TestApplyEventUpgradePreservesUsage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, limits := newService(t)
	tenantID := uuid.New()

	require.NoError(t, svc.ApplyEvent(ctx, billing.Event{
		Type: billing.EventSubscriptionCreated, TenantID: tenantID, PlanID: "starter",
	}))

	gate, err := tier.NewGate(limits)
	require.NoError(t, err)
	ok, err := gate.Consume(ctx, tenantID, tier.FeatureGTMContainer, tier.OperationCreate)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.ApplyEvent(ctx, billing.Event{
		Type: billing.EventSubscriptionUpdated, TenantID: tenantID, PlanID: "agency",
	}))

	limit, err := limits.Get(ctx, tenantID, tier.FeatureGTMContainer)
	require.NoError(t, err)
	assert.Equal(t, tier.Unlimited, limit.CreateLimit)
	assert.EqualValues(t, 1, limit.CreateUsage)
}

func TestApplyEventLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)
	tenantID := uuid.New()

	require.NoError(t, svc.ApplyEvent(ctx, billing.Event{
		Type: billing.EventSubscriptionTrial, TenantID: tenantID, PlanID: "starter",
	}))
	sub, err := svc.Subscription(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusTrialing, sub.Status)
	assert.True(t, sub.Entitled())

	require.NoError(t, svc.ApplyEvent(ctx, billing.Event{
		Type: billing.EventSubscriptionPastDue, TenantID: tenantID,
	}))
	sub, err = svc.Subscription(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusPastDue, sub.Status)
	assert.Equal(t, "starter", sub.PlanID, "plan survives status-only events")
	assert.True(t, sub.Entitled())

	occurred := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, svc.ApplyEvent(ctx, billing.Event{
		Type: billing.EventSubscriptionCancelled, TenantID: tenantID, OccurredAt: occurred,
	}))
	sub, err = svc.Subscription(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, billing.StatusCancelled, sub.Status)
	require.NotNil(t, sub.CancelledAt)
	assert.Equal(t, occurred, *sub.CancelledAt)
	assert.False(t, sub.Entitled())
}

func TestApplyEventRejectsBadInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, _ := newService(t)

	err := svc.ApplyEvent(ctx, billing.Event{Type: billing.EventSubscriptionCreated, PlanID: "starter"})
	assert.ErrorIs(t, err, billing.ErrInvalidEvent)

	err = svc.ApplyEvent(ctx, billing.Event{Type: billing.EventSubscriptionCreated, TenantID: uuid.New()})
	assert.ErrorIs(t, err, billing.ErrInvalidEvent)

	err = svc.ApplyEvent(ctx, billing.Event{Type: "subscription.exploded", TenantID: uuid.New()})
	assert.ErrorIs(t, err, billing.ErrUnknownEventType)

	err = svc.ApplyEvent(ctx, billing.Event{
		Type: billing.EventSubscriptionCreated, TenantID: uuid.New(), PlanID: "nonexistent",
	})
	assert.ErrorIs(t, err, billing.ErrUnknownPlan)
}
