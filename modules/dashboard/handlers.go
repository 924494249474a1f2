package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tagbridge/tagbridge/pkg/rescache"
	"github.com/tagbridge/tagbridge/svc/orchestrator"
)

// maxBatchSize bounds one request's fan-out. Larger batches would hold the
// throttle for minutes and starve other tenants of the process.
const maxBatchSize = 100

// batchRequest is the envelope every mutation endpoint accepts. The UI
// always submits arrays of forms, even for a single item.
type batchRequest[F any] struct {
	Forms []F `json:"forms"`
}

// batchHandler decodes a form batch and runs it through the orchestrator.
// The response is always a FeatureResponse with HTTP 200; partial failure
// is expressed in the body, not the status code.
func batchHandler[F any](m *Module, op func() orchestrator.Operation[F]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := TenantID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing tenant")
			return
		}

		var req batchRequest[F]
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if len(req.Forms) == 0 {
			writeError(w, http.StatusBadRequest, "forms must not be empty")
			return
		}
		if len(req.Forms) > maxBatchSize {
			writeError(w, http.StatusRequestEntityTooLarge, "batch exceeds maximum size")
			return
		}

		resp := orchestrator.Execute(r.Context(), m.deps.Engine, op(), tenantID, req.Forms)
		writeJSON(w, http.StatusOK, resp)
	}
}

type listResponse struct {
	Items []json.RawMessage `json:"items"`
}

// listHandler serves a cached read of one resource family: cache hit
// returns the warm hash, miss fetches from upstream and populates it.
func listHandler[T any](
	m *Module,
	family rescache.Family,
	fetch func(ctx context.Context, token string, r *http.Request) ([]T, error),
	id func(T) string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := TenantID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing tenant")
			return
		}

		token, err := m.deps.Tokens.Token(r.Context(), tenantID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "google account not connected")
			return
		}

		entries, err := m.deps.Cache.ReadThrough(r.Context(), family, tenantID,
			func(ctx context.Context) (map[string]json.RawMessage, error) {
				items, err := fetch(ctx, token, r)
				if err != nil {
					return nil, err
				}
				out := make(map[string]json.RawMessage, len(items))
				for _, item := range items {
					raw, err := json.Marshal(item)
					if err != nil {
						return nil, err
					}
					out[id(item)] = raw
				}
				return out, nil
			})
		if err != nil {
			m.deps.Logger.ErrorContext(r.Context(), "list fetch failed",
				"family", family.Name, "error", err.Error())
			writeError(w, http.StatusBadGateway, "upstream fetch failed")
			return
		}

		items := make([]json.RawMessage, 0, len(entries))
		for _, raw := range entries {
			items = append(items, raw)
		}
		writeJSON(w, http.StatusOK, listResponse{Items: items})
	}
}

// usage reports every feature's counters for the tenant's dashboard.
func (m *Module) usage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := TenantID(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing tenant")
			return
		}

		usage, err := m.deps.Gate.Usage(r.Context(), tenantID)
		if err != nil {
			writeError(w, http.StatusNotFound, "no subscription for tenant")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"usage": usage})
	}
}
