package token

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tagbridge/tagbridge/pkg/pg"
)

// PgStore persists credentials in the oauth_credentials table.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a Store on the given pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Get returns the credential for a tenant, or ErrNoCredential.
func (s *PgStore) Get(ctx context.Context, tenantID uuid.UUID) (*Credential, error) {
	const q = `
		SELECT tenant_id, access_token, refresh_token, expiry, updated_at
		FROM oauth_credentials
		WHERE tenant_id = $1`

	cred := &Credential{}
	err := s.pool.QueryRow(ctx, q, tenantID).Scan(
		&cred.TenantID, &cred.AccessToken, &cred.RefreshToken, &cred.Expiry, &cred.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("token: query credential: %w", err)
	}
	return cred, nil
}

// Save upserts the credential for its tenant.
func (s *PgStore) Save(ctx context.Context, cred *Credential) error {
	const q = `
		INSERT INTO oauth_credentials (tenant_id, access_token, refresh_token, expiry, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (tenant_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expiry = EXCLUDED.expiry,
			updated_at = now()`

	if _, err := s.pool.Exec(ctx, q, cred.TenantID, cred.AccessToken, cred.RefreshToken, cred.Expiry); err != nil {
		return fmt.Errorf("token: save credential: %w", err)
	}
	return nil
}
