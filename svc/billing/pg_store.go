package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tagbridge/tagbridge/pkg/pg"
)

// PgStore persists subscriptions in the subscriptions table.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a Store on the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Get returns the subscription for a tenant, or ErrNoSubscription.
func (s *PgStore) Get(ctx context.Context, tenantID uuid.UUID) (Subscription, error) {
	const q = `
		SELECT tenant_id, plan_id, status, provider_sub_id, created_at, updated_at, cancelled_at
		FROM subscriptions
		WHERE tenant_id = $1`

	var sub Subscription
	err := s.pool.QueryRow(ctx, q, tenantID).Scan(
		&sub.TenantID, &sub.PlanID, &sub.Status, &sub.ProviderSubID,
		&sub.CreatedAt, &sub.UpdatedAt, &sub.CancelledAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return Subscription{}, ErrNoSubscription
		}
		return Subscription{}, fmt.Errorf("billing: query subscription: %w", err)
	}
	return sub, nil
}

// Upsert inserts or replaces the tenant's subscription row.
func (s *PgStore) Upsert(ctx context.Context, sub Subscription) error {
	const q = `
		INSERT INTO subscriptions (tenant_id, plan_id, status, provider_sub_id, created_at, updated_at, cancelled_at)
		VALUES ($1, $2, $3, $4, now(), now(), $5)
		ON CONFLICT (tenant_id) DO UPDATE SET
			plan_id = EXCLUDED.plan_id,
			status = EXCLUDED.status,
			provider_sub_id = EXCLUDED.provider_sub_id,
			updated_at = now(),
			cancelled_at = EXCLUDED.cancelled_at`

	if _, err := s.pool.Exec(ctx, q, sub.TenantID, sub.PlanID, sub.Status, sub.ProviderSubID, sub.CancelledAt); err != nil {
		return fmt.Errorf("billing: upsert subscription: %w", err)
	}
	return nil
}
