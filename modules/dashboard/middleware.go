package dashboard

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const tenantKey ctxKey = iota

// TenantHeader carries the authenticated tenant id, injected by the
// identity-aware proxy in front of this service.
const TenantHeader = "X-Tenant-ID"

// requireTenant rejects requests without a parseable tenant id and stores
// the id in the request context for handlers.
func requireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := uuid.Parse(r.Header.Get(TenantHeader))
		if err != nil || tenantID == uuid.Nil {
			writeError(w, http.StatusUnauthorized, "missing or invalid tenant id")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey, tenantID)))
	})
}

// TenantID returns the tenant stored by requireTenant.
func TenantID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantKey).(uuid.UUID)
	return id, ok
}
