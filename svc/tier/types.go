// Package tier enforces per-feature subscription usage limits.
//
// Every tenant has one tier-limit row per feature, carrying independent
// usage/limit counter pairs for create, update, and delete operations. The
// gate answers two questions: "may this batch be admitted?" (a cheap
// up-front read) and "may this one applied item be counted?" (a conditional
// atomic increment at the store, which is what actually prevents overuse
// under concurrent batches).
package tier

import (
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNoSubscription means no tier-limit rows exist for the tenant,
	// i.e. there is no active subscription backing the feature.
	ErrNoSubscription = errors.New("tier: no subscription limits for tenant")

	ErrStoreRequired     = errors.New("tier: store is required")
	ErrUnknownOperation  = errors.New("tier: unknown operation kind")
	ErrInvalidPlanConfig = errors.New("tier: invalid plan configuration")
	ErrPlanNotFound      = errors.New("tier: plan not found")
)

// Feature names a resource family with its own usage counters.
type Feature string

// Features provisioned for every subscription.
const (
	FeatureGTMAccounts         Feature = "GTMAccounts"
	FeatureGTMContainer        Feature = "GTMContainer"
	FeatureGTMWorkspaces       Feature = "GTMWorkspaces"
	FeatureGTMTags             Feature = "GTMTags"
	FeatureGTMVariables        Feature = "GTMVariables"
	FeatureGA4Properties       Feature = "GA4Properties"
	FeatureGA4Streams          Feature = "GA4Streams"
	FeatureGA4CustomDimensions Feature = "GA4CustomDimensions"
	FeatureGA4CustomMetrics    Feature = "GA4CustomMetrics"
	FeatureGA4AccessBindings   Feature = "GA4AccessBindings"
)

// OperationKind distinguishes the three counter pairs on a limit row.
type OperationKind string

const (
	OperationCreate OperationKind = "create"
	OperationUpdate OperationKind = "update"
	OperationDelete OperationKind = "delete"
)

// Unlimited marks a counter with no ceiling (-1 for SQL compatibility).
const Unlimited int64 = -1

// Limit is one tenant's usage row for one feature.
type Limit struct {
	TenantID uuid.UUID
	Feature  Feature

	CreateUsage int64
	CreateLimit int64
	UpdateUsage int64
	UpdateLimit int64
	DeleteUsage int64
	DeleteLimit int64
}

// Usage returns the current usage counter for the operation kind.
func (l *Limit) Usage(kind OperationKind) int64 {
	switch kind {
	case OperationCreate:
		return l.CreateUsage
	case OperationUpdate:
		return l.UpdateUsage
	case OperationDelete:
		return l.DeleteUsage
	}
	return 0
}

// Ceiling returns the limit counter for the operation kind.
func (l *Limit) Ceiling(kind OperationKind) int64 {
	switch kind {
	case OperationCreate:
		return l.CreateLimit
	case OperationUpdate:
		return l.UpdateLimit
	case OperationDelete:
		return l.DeleteLimit
	}
	return 0
}

// Available returns how many more operations of the kind the tenant may
// perform, or Unlimited.
func (l *Limit) Available(kind OperationKind) int64 {
	ceiling := l.Ceiling(kind)
	if ceiling == Unlimited {
		return Unlimited
	}
	return max(0, ceiling-l.Usage(kind))
}

// UsageInfo is the per-operation view returned by usage endpoints.
type UsageInfo struct {
	Usage int64 `json:"usage"`
	Limit int64 `json:"limit"`
}

// FeatureUsage aggregates a feature's three counter pairs.
type FeatureUsage struct {
	Create UsageInfo `json:"create"`
	Update UsageInfo `json:"update"`
	Delete UsageInfo `json:"delete"`
}
