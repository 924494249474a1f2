// Package token resolves a tenant's stored Google OAuth access token.
//
// Credentials are written by the identity provider's OAuth callback (out of
// scope here) and read by every orchestrated action. Expired access tokens
// are refreshed against Google's token endpoint and persisted so the next
// request skips the refresh round trip.
package token

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var (
	// ErrNoCredential means the tenant never connected a Google account or
	// revoked access. Surfaced as a 401-equivalent before any quota is
	// consumed.
	ErrNoCredential = errors.New("token: no stored google credential for tenant")

	// ErrRefreshFailed means the upstream token refresh was rejected.
	ErrRefreshFailed = errors.New("token: failed to refresh google access token")

	ErrStoreRequired = errors.New("token: credential store is required")
)

// Credential is a tenant's stored Google OAuth grant.
type Credential struct {
	TenantID     uuid.UUID
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
	UpdatedAt    time.Time
}

// expirySkew treats tokens expiring within the window as already expired so
// an in-flight batch never carries a token that dies mid-request.
const expirySkew = time.Minute

// Valid reports whether the access token can still be used directly.
func (c *Credential) Valid() bool {
	return c.AccessToken != "" && time.Now().Add(expirySkew).Before(c.Expiry)
}

// Store persists per-tenant Google credentials.
type Store interface {
	// Get returns the credential for a tenant, or ErrNoCredential.
	Get(ctx context.Context, tenantID uuid.UUID) (*Credential, error)

	// Save creates or updates the credential for its tenant.
	Save(ctx context.Context, cred *Credential) error
}

// Provider resolves access tokens, refreshing through the injected oauth2
// config when needed.
type Provider struct {
	store Store
	oauth *oauth2.Config
}

// NewProvider creates a Provider. The oauth2 config carries the Google
// client id/secret and token endpoint.
func NewProvider(store Store, oauthCfg *oauth2.Config) (*Provider, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if oauthCfg == nil {
		return nil, errors.New("token: oauth2 config is required")
	}
	return &Provider{store: store, oauth: oauthCfg}, nil
}

// Token returns a live access token for the tenant. A still-valid stored
// token is returned as-is; otherwise the refresh token is exchanged and the
// rotated credential persisted before returning.
func (p *Provider) Token(ctx context.Context, tenantID uuid.UUID) (string, error) {
	cred, err := p.store.Get(ctx, tenantID)
	if err != nil {
		return "", err
	}

	if cred.Valid() {
		return cred.AccessToken, nil
	}

	refreshed, err := p.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		Expiry:       cred.Expiry,
	}).Token()
	if err != nil {
		return "", errors.Join(ErrRefreshFailed, err)
	}

	cred.AccessToken = refreshed.AccessToken
	cred.Expiry = refreshed.Expiry
	if refreshed.RefreshToken != "" {
		cred.RefreshToken = refreshed.RefreshToken
	}
	if err := p.store.Save(ctx, cred); err != nil {
		return "", err
	}

	return refreshed.AccessToken, nil
}
