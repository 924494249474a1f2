package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tagbridge/tagbridge/pkg/rescache"
	"github.com/tagbridge/tagbridge/svc/google"
	"github.com/tagbridge/tagbridge/svc/orchestrator"
	"github.com/tagbridge/tagbridge/svc/tier"
)

// Limiter families: GTM and GA4 carry independent upstream quotas, so each
// gets its own per-tenant window.
const (
	limiterGTM = "gtm"
	limiterGA4 = "ga4"
)

// gtmTTL bounds cache staleness for the frequently-edited GTM families.
const gtmTTL = 24 * time.Hour

var (
	famGTMAccounts   = rescache.Family{Name: "gtm:accounts", TTL: gtmTTL}
	famGTMContainers = rescache.Family{Name: "gtm:containers", TTL: gtmTTL}
	famGTMWorkspaces = rescache.Family{Name: "gtm:workspaces", TTL: gtmTTL}
	famGTMTags       = rescache.Family{Name: "gtm:tags", TTL: gtmTTL}
	famGTMVariables  = rescache.Family{Name: "gtm:variables", TTL: gtmTTL}
)

// applied packs a mutated resource into the orchestrator's cache payload.
func applied(id, name string, v any) (orchestrator.Applied, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return orchestrator.Applied{}, err
	}
	return orchestrator.Applied{ID: id, Name: name, Payload: payload}, nil
}

func deleted(id, name string) orchestrator.Applied {
	return orchestrator.Applied{ID: id, Name: name, Deleted: true}
}

// ---- Accounts ----

func (m *Module) listGTMAccounts() http.HandlerFunc {
	return listHandler(m, famGTMAccounts,
		func(ctx context.Context, token string, r *http.Request) ([]google.Account, error) {
			return m.deps.GTM.ListAccounts(ctx, token)
		},
		func(a google.Account) string { return a.AccountID },
	)
}

func (m *Module) gtmAccountUpdate() orchestrator.Operation[google.Account] {
	return orchestrator.Operation[google.Account]{
		Feature:       tier.FeatureGTMAccounts,
		Kind:          tier.OperationUpdate,
		LimiterFamily: limiterGTM,
		CacheFamily:   famGTMAccounts,
		Validate:      google.Account.Validate,
		Call: func(ctx context.Context, token string, form google.Account) (orchestrator.Applied, error) {
			out, err := m.deps.GTM.UpdateAccount(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.AccountID, out.Name, out)
		},
	}
}

// ---- Containers ----

func (m *Module) listGTMContainers() http.HandlerFunc {
	return listHandler(m, famGTMContainers,
		func(ctx context.Context, token string, r *http.Request) ([]google.Container, error) {
			return m.deps.GTM.ListContainers(ctx, token, r.URL.Query().Get("accountId"))
		},
		func(c google.Container) string { return c.ContainerID },
	)
}

func (m *Module) gtmContainerCreate() orchestrator.Operation[google.Container] {
	return orchestrator.Operation[google.Container]{
		Feature:       tier.FeatureGTMContainer,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGTM,
		CacheFamily:   famGTMContainers,
		Validate:      google.Container.Validate,
		Call: func(ctx context.Context, token string, form google.Container) (orchestrator.Applied, error) {
			out, err := m.deps.GTM.CreateContainer(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.ContainerID, out.Name, out)
		},
	}
}

func (m *Module) gtmContainerUpdate() orchestrator.Operation[google.Container] {
	op := m.gtmContainerCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.Container) (orchestrator.Applied, error) {
		out, err := m.deps.GTM.UpdateContainer(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.ContainerID, out.Name, out)
	}
	return op
}

func (m *Module) gtmContainerDelete() orchestrator.Operation[google.Container] {
	op := m.gtmContainerCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.Container) (orchestrator.Applied, error) {
		if err := m.deps.GTM.DeleteContainer(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.ContainerID, form.Name), nil
	}
	return op
}

// ---- Workspaces ----

func (m *Module) listGTMWorkspaces() http.HandlerFunc {
	return listHandler(m, famGTMWorkspaces,
		func(ctx context.Context, token string, r *http.Request) ([]google.Workspace, error) {
			q := r.URL.Query()
			return m.deps.GTM.ListWorkspaces(ctx, token, q.Get("accountId"), q.Get("containerId"))
		},
		func(w google.Workspace) string { return w.WorkspaceID },
	)
}

func (m *Module) gtmWorkspaceCreate() orchestrator.Operation[google.Workspace] {
	return orchestrator.Operation[google.Workspace]{
		Feature:       tier.FeatureGTMWorkspaces,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGTM,
		CacheFamily:   famGTMWorkspaces,
		Validate:      google.Workspace.Validate,
		Call: func(ctx context.Context, token string, form google.Workspace) (orchestrator.Applied, error) {
			out, err := m.deps.GTM.CreateWorkspace(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.WorkspaceID, out.Name, out)
		},
	}
}

func (m *Module) gtmWorkspaceUpdate() orchestrator.Operation[google.Workspace] {
	op := m.gtmWorkspaceCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.Workspace) (orchestrator.Applied, error) {
		out, err := m.deps.GTM.UpdateWorkspace(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.WorkspaceID, out.Name, out)
	}
	return op
}

func (m *Module) gtmWorkspaceDelete() orchestrator.Operation[google.Workspace] {
	op := m.gtmWorkspaceCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.Workspace) (orchestrator.Applied, error) {
		if err := m.deps.GTM.DeleteWorkspace(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.WorkspaceID, form.Name), nil
	}
	return op
}

// ---- Tags ----

func (m *Module) listGTMTags() http.HandlerFunc {
	return listHandler(m, famGTMTags,
		func(ctx context.Context, token string, r *http.Request) ([]google.Tag, error) {
			q := r.URL.Query()
			return m.deps.GTM.ListTags(ctx, token, q.Get("accountId"), q.Get("containerId"), q.Get("workspaceId"))
		},
		func(t google.Tag) string { return t.TagID },
	)
}

func (m *Module) gtmTagCreate() orchestrator.Operation[google.Tag] {
	return orchestrator.Operation[google.Tag]{
		Feature:       tier.FeatureGTMTags,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGTM,
		CacheFamily:   famGTMTags,
		Validate:      google.Tag.Validate,
		Call: func(ctx context.Context, token string, form google.Tag) (orchestrator.Applied, error) {
			out, err := m.deps.GTM.CreateTag(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.TagID, out.Name, out)
		},
	}
}

func (m *Module) gtmTagUpdate() orchestrator.Operation[google.Tag] {
	op := m.gtmTagCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.Tag) (orchestrator.Applied, error) {
		out, err := m.deps.GTM.UpdateTag(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.TagID, out.Name, out)
	}
	return op
}

func (m *Module) gtmTagDelete() orchestrator.Operation[google.Tag] {
	op := m.gtmTagCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.Tag) (orchestrator.Applied, error) {
		if err := m.deps.GTM.DeleteTag(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.TagID, form.Name), nil
	}
	return op
}

// ---- Variables ----

func (m *Module) listGTMVariables() http.HandlerFunc {
	return listHandler(m, famGTMVariables,
		func(ctx context.Context, token string, r *http.Request) ([]google.Variable, error) {
			q := r.URL.Query()
			return m.deps.GTM.ListVariables(ctx, token, q.Get("accountId"), q.Get("containerId"), q.Get("workspaceId"))
		},
		func(v google.Variable) string { return v.VariableID },
	)
}

func (m *Module) gtmVariableCreate() orchestrator.Operation[google.Variable] {
	return orchestrator.Operation[google.Variable]{
		Feature:       tier.FeatureGTMVariables,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGTM,
		CacheFamily:   famGTMVariables,
		Validate:      google.Variable.Validate,
		Call: func(ctx context.Context, token string, form google.Variable) (orchestrator.Applied, error) {
			out, err := m.deps.GTM.CreateVariable(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.VariableID, out.Name, out)
		},
	}
}

func (m *Module) gtmVariableUpdate() orchestrator.Operation[google.Variable] {
	op := m.gtmVariableCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.Variable) (orchestrator.Applied, error) {
		out, err := m.deps.GTM.UpdateVariable(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.VariableID, out.Name, out)
	}
	return op
}

func (m *Module) gtmVariableDelete() orchestrator.Operation[google.Variable] {
	op := m.gtmVariableCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.Variable) (orchestrator.Applied, error) {
		if err := m.deps.GTM.DeleteVariable(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.VariableID, form.Name), nil
	}
	return op
}
