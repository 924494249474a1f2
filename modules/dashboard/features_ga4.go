package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/tagbridge/tagbridge/pkg/rescache"
	"github.com/tagbridge/tagbridge/svc/google"
	"github.com/tagbridge/tagbridge/svc/orchestrator"
	"github.com/tagbridge/tagbridge/svc/tier"
)

// ga4TTL is longer than the GTM TTL; analytics admin config changes far
// less often than tag configuration.
const ga4TTL = 7 * 24 * time.Hour

var (
	famGA4Properties = rescache.Family{Name: "ga4:properties", TTL: ga4TTL}
	famGA4Streams    = rescache.Family{Name: "ga4:streams", TTL: ga4TTL}
	famGA4Dimensions = rescache.Family{Name: "ga4:custom-dimensions", TTL: ga4TTL}
	famGA4Metrics    = rescache.Family{Name: "ga4:custom-metrics", TTL: ga4TTL}
	famGA4Bindings   = rescache.Family{Name: "ga4:access-bindings", TTL: ga4TTL}
)

// ---- Properties ----

func (m *Module) listGA4Properties() http.HandlerFunc {
	return listHandler(m, famGA4Properties,
		func(ctx context.Context, token string, r *http.Request) ([]google.Property, error) {
			return m.deps.GA4.ListProperties(ctx, token, r.URL.Query().Get("account"))
		},
		func(p google.Property) string { return p.Name },
	)
}

func (m *Module) ga4PropertyCreate() orchestrator.Operation[google.Property] {
	return orchestrator.Operation[google.Property]{
		Feature:       tier.FeatureGA4Properties,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGA4,
		CacheFamily:   famGA4Properties,
		Validate:      google.Property.Validate,
		Call: func(ctx context.Context, token string, form google.Property) (orchestrator.Applied, error) {
			out, err := m.deps.GA4.CreateProperty(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.Name, out.DisplayName, out)
		},
	}
}

func (m *Module) ga4PropertyUpdate() orchestrator.Operation[google.Property] {
	op := m.ga4PropertyCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.Property) (orchestrator.Applied, error) {
		out, err := m.deps.GA4.UpdateProperty(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.Name, out.DisplayName, out)
	}
	return op
}

func (m *Module) ga4PropertyDelete() orchestrator.Operation[google.Property] {
	op := m.ga4PropertyCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.Property) (orchestrator.Applied, error) {
		if err := m.deps.GA4.DeleteProperty(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.Name, form.DisplayName), nil
	}
	return op
}

// ---- Data streams ----

func (m *Module) listGA4Streams() http.HandlerFunc {
	return listHandler(m, famGA4Streams,
		func(ctx context.Context, token string, r *http.Request) ([]google.DataStream, error) {
			return m.deps.GA4.ListDataStreams(ctx, token, r.URL.Query().Get("property"))
		},
		func(d google.DataStream) string { return d.Name },
	)
}

func (m *Module) ga4StreamCreate() orchestrator.Operation[google.DataStream] {
	return orchestrator.Operation[google.DataStream]{
		Feature:       tier.FeatureGA4Streams,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGA4,
		CacheFamily:   famGA4Streams,
		Validate:      google.DataStream.Validate,
		Call: func(ctx context.Context, token string, form google.DataStream) (orchestrator.Applied, error) {
			out, err := m.deps.GA4.CreateDataStream(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.Name, out.DisplayName, out)
		},
	}
}

func (m *Module) ga4StreamUpdate() orchestrator.Operation[google.DataStream] {
	op := m.ga4StreamCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.DataStream) (orchestrator.Applied, error) {
		out, err := m.deps.GA4.UpdateDataStream(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.Name, out.DisplayName, out)
	}
	return op
}

func (m *Module) ga4StreamDelete() orchestrator.Operation[google.DataStream] {
	op := m.ga4StreamCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.DataStream) (orchestrator.Applied, error) {
		if err := m.deps.GA4.DeleteDataStream(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.Name, form.DisplayName), nil
	}
	return op
}

// ---- Custom dimensions ----

func (m *Module) listGA4CustomDimensions() http.HandlerFunc {
	return listHandler(m, famGA4Dimensions,
		func(ctx context.Context, token string, r *http.Request) ([]google.CustomDimension, error) {
			return m.deps.GA4.ListCustomDimensions(ctx, token, r.URL.Query().Get("property"))
		},
		func(d google.CustomDimension) string { return d.Name },
	)
}

func (m *Module) ga4DimensionCreate() orchestrator.Operation[google.CustomDimension] {
	return orchestrator.Operation[google.CustomDimension]{
		Feature:       tier.FeatureGA4CustomDimensions,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGA4,
		CacheFamily:   famGA4Dimensions,
		Validate:      google.CustomDimension.Validate,
		Call: func(ctx context.Context, token string, form google.CustomDimension) (orchestrator.Applied, error) {
			out, err := m.deps.GA4.CreateCustomDimension(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.Name, out.DisplayName, out)
		},
	}
}

func (m *Module) ga4DimensionUpdate() orchestrator.Operation[google.CustomDimension] {
	op := m.ga4DimensionCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.CustomDimension) (orchestrator.Applied, error) {
		out, err := m.deps.GA4.UpdateCustomDimension(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.Name, out.DisplayName, out)
	}
	return op
}

// ga4DimensionArchive is the delete operation for dimensions; upstream only
// supports archiving.
func (m *Module) ga4DimensionArchive() orchestrator.Operation[google.CustomDimension] {
	op := m.ga4DimensionCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.CustomDimension) (orchestrator.Applied, error) {
		if err := m.deps.GA4.ArchiveCustomDimension(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.Name, form.DisplayName), nil
	}
	return op
}

// ---- Custom metrics ----

func (m *Module) listGA4CustomMetrics() http.HandlerFunc {
	return listHandler(m, famGA4Metrics,
		func(ctx context.Context, token string, r *http.Request) ([]google.CustomMetric, error) {
			return m.deps.GA4.ListCustomMetrics(ctx, token, r.URL.Query().Get("property"))
		},
		func(cm google.CustomMetric) string { return cm.Name },
	)
}

func (m *Module) ga4MetricCreate() orchestrator.Operation[google.CustomMetric] {
	return orchestrator.Operation[google.CustomMetric]{
		Feature:       tier.FeatureGA4CustomMetrics,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGA4,
		CacheFamily:   famGA4Metrics,
		Validate:      google.CustomMetric.Validate,
		Call: func(ctx context.Context, token string, form google.CustomMetric) (orchestrator.Applied, error) {
			out, err := m.deps.GA4.CreateCustomMetric(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.Name, out.DisplayName, out)
		},
	}
}

func (m *Module) ga4MetricUpdate() orchestrator.Operation[google.CustomMetric] {
	op := m.ga4MetricCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.CustomMetric) (orchestrator.Applied, error) {
		out, err := m.deps.GA4.UpdateCustomMetric(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.Name, out.DisplayName, out)
	}
	return op
}

func (m *Module) ga4MetricArchive() orchestrator.Operation[google.CustomMetric] {
	op := m.ga4MetricCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.CustomMetric) (orchestrator.Applied, error) {
		if err := m.deps.GA4.ArchiveCustomMetric(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.Name, form.DisplayName), nil
	}
	return op
}

// ---- Access bindings ----

func (m *Module) listGA4AccessBindings() http.HandlerFunc {
	return listHandler(m, famGA4Bindings,
		func(ctx context.Context, token string, r *http.Request) ([]google.AccessBinding, error) {
			return m.deps.GA4.ListAccessBindings(ctx, token, r.URL.Query().Get("property"))
		},
		func(b google.AccessBinding) string { return b.Name },
	)
}

func (m *Module) ga4BindingCreate() orchestrator.Operation[google.AccessBinding] {
	return orchestrator.Operation[google.AccessBinding]{
		Feature:       tier.FeatureGA4AccessBindings,
		Kind:          tier.OperationCreate,
		LimiterFamily: limiterGA4,
		CacheFamily:   famGA4Bindings,
		Validate:      google.AccessBinding.Validate,
		Call: func(ctx context.Context, token string, form google.AccessBinding) (orchestrator.Applied, error) {
			out, err := m.deps.GA4.CreateAccessBinding(ctx, token, form)
			if err != nil {
				return orchestrator.Applied{}, err
			}
			return applied(out.Name, out.User, out)
		},
	}
}

func (m *Module) ga4BindingUpdate() orchestrator.Operation[google.AccessBinding] {
	op := m.ga4BindingCreate()
	op.Kind = tier.OperationUpdate
	op.Call = func(ctx context.Context, token string, form google.AccessBinding) (orchestrator.Applied, error) {
		out, err := m.deps.GA4.UpdateAccessBinding(ctx, token, form)
		if err != nil {
			return orchestrator.Applied{}, err
		}
		return applied(out.Name, out.User, out)
	}
	return op
}

func (m *Module) ga4BindingDelete() orchestrator.Operation[google.AccessBinding] {
	op := m.ga4BindingCreate()
	op.Kind = tier.OperationDelete
	op.Call = func(ctx context.Context, token string, form google.AccessBinding) (orchestrator.Applied, error) {
		if err := m.deps.GA4.DeleteAccessBinding(ctx, token, form); err != nil {
			return orchestrator.Applied{}, err
		}
		return deleted(form.Name, form.User), nil
	}
	return op
}
