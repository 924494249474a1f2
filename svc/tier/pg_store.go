package tier

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore persists tier limits in the tier_limits table.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a Store on the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const limitColumns = `
	tenant_id, feature,
	create_usage, create_limit,
	update_usage, update_limit,
	delete_usage, delete_limit`

func scanLimit(row pgx.Row) (*Limit, error) {
	l := &Limit{}
	err := row.Scan(
		&l.TenantID, &l.Feature,
		&l.CreateUsage, &l.CreateLimit,
		&l.UpdateUsage, &l.UpdateLimit,
		&l.DeleteUsage, &l.DeleteLimit,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Get returns the limit row for a tenant and feature.
func (s *PgStore) Get(ctx context.Context, tenantID uuid.UUID, feature Feature) (*Limit, error) {
	q := fmt.Sprintf(`SELECT %s FROM tier_limits WHERE tenant_id = $1 AND feature = $2`, limitColumns)

	l, err := scanLimit(s.pool.QueryRow(ctx, q, tenantID, feature))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNoSubscription
		}
		return nil, fmt.Errorf("tier: query limit: %w", err)
	}
	return l, nil
}

// All returns every limit row for a tenant.
func (s *PgStore) All(ctx context.Context, tenantID uuid.UUID) ([]Limit, error) {
	q := fmt.Sprintf(`SELECT %s FROM tier_limits WHERE tenant_id = $1 ORDER BY feature`, limitColumns)

	rows, err := s.pool.Query(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("tier: query limits: %w", err)
	}
	defer rows.Close()

	var limits []Limit
	for rows.Next() {
		l, err := scanLimit(rows)
		if err != nil {
			return nil, fmt.Errorf("tier: scan limit: %w", err)
		}
		limits = append(limits, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tier: iterate limits: %w", err)
	}
	if len(limits) == 0 {
		return nil, ErrNoSubscription
	}
	return limits, nil
}

// usageColumn whitelists the counter column pair per operation kind; the
// kind never reaches SQL as raw input.
func usageColumn(kind OperationKind) (usage, limit string, err error) {
	switch kind {
	case OperationCreate:
		return "create_usage", "create_limit", nil
	case OperationUpdate:
		return "update_usage", "update_limit", nil
	case OperationDelete:
		return "delete_usage", "delete_limit", nil
	default:
		return "", "", ErrUnknownOperation
	}
}

// IncrementIfAllowed applies the conditional increment as one UPDATE so the
// check and the bump cannot interleave with a concurrent batch.
func (s *PgStore) IncrementIfAllowed(ctx context.Context, tenantID uuid.UUID, feature Feature, kind OperationKind, n int64) (bool, error) {
	usageCol, limitCol, err := usageColumn(kind)
	if err != nil {
		return false, err
	}

	q := fmt.Sprintf(`
		UPDATE tier_limits
		SET %[1]s = %[1]s + $3
		WHERE tenant_id = $1 AND feature = $2
		  AND (%[2]s = -1 OR %[1]s + $3 <= %[2]s)`,
		usageCol, limitCol)

	tag, err := s.pool.Exec(ctx, q, tenantID, feature, n)
	if err != nil {
		return false, fmt.Errorf("tier: increment usage: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Provision upserts the tenant's limit rows, keeping accumulated usage when
// the feature row already exists (plan changes must not reset consumption).
func (s *PgStore) Provision(ctx context.Context, tenantID uuid.UUID, limits []Limit) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("tier: begin provision: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const q = `
		INSERT INTO tier_limits (
			tenant_id, feature,
			create_usage, create_limit,
			update_usage, update_limit,
			delete_usage, delete_limit
		) VALUES ($1, $2, 0, $3, 0, $4, 0, $5)
		ON CONFLICT (tenant_id, feature) DO UPDATE SET
			create_limit = EXCLUDED.create_limit,
			update_limit = EXCLUDED.update_limit,
			delete_limit = EXCLUDED.delete_limit`

	for _, l := range limits {
		if _, err := tx.Exec(ctx, q, tenantID, l.Feature, l.CreateLimit, l.UpdateLimit, l.DeleteLimit); err != nil {
			return fmt.Errorf("tier: provision %s: %w", l.Feature, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tier: commit provision: %w", err)
	}
	return nil
}
