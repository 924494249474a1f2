// Package billing tracks each tenant's subscription and applies signed
// provider webhook events: upserting the subscription record and
// provisioning tier limits from the plan catalog on plan changes.
package billing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoSubscription    = errors.New("billing: no subscription for tenant")
	ErrUnknownPlan       = errors.New("billing: unknown plan")
	ErrUnknownEventType  = errors.New("billing: unknown event type")
	ErrInvalidEvent      = errors.New("billing: invalid event payload")
	ErrInvalidSignature  = errors.New("billing: invalid webhook signature")
	ErrStaleTimestamp    = errors.New("billing: webhook timestamp outside tolerance")
	ErrSecretRequired    = errors.New("billing: webhook secret is required")
	ErrStoreRequired     = errors.New("billing: store is required")
	ErrCatalogRequired   = errors.New("billing: plan catalog is required")
	ErrProvisionRequired = errors.New("billing: limit provisioner is required")
)

// Status is the lifecycle state of a subscription.
type Status string

const (
	StatusTrialing  Status = "trialing"
	StatusActive    Status = "active"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

// Subscription is a tenant's current plan. One row per tenant.
type Subscription struct {
	TenantID      uuid.UUID
	PlanID        string
	Status        Status
	ProviderSubID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CancelledAt   *time.Time
}

// Entitled reports whether the subscription still grants feature access.
// Past-due tenants keep access through the dunning window; cancelled and
// expired ones do not.
func (s *Subscription) Entitled() bool {
	switch s.Status {
	case StatusTrialing, StatusActive, StatusPastDue:
		return true
	}
	return false
}
