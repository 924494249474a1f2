package google

import (
	"context"
	"net/http"
	"net/url"
)

// GA4Client talks to the Analytics Admin API v1beta. Resource names are
// relative ("properties/123/dataStreams/456") per the API convention.
type GA4Client struct {
	c *client
}

// NewGA4Client returns a client bound to cfg.GA4BaseURL.
func NewGA4Client(cfg Config) *GA4Client {
	return &GA4Client{c: newClient(cfg.GA4BaseURL, cfg.HTTPTimeout)}
}

// ---- Properties ----

// ListProperties returns properties under a parent account, e.g.
// "accounts/123".
func (g *GA4Client) ListProperties(ctx context.Context, token, parent string) ([]Property, error) {
	var out struct {
		Properties []Property `json:"properties"`
	}
	query := url.Values{"filter": {"parent:" + parent}}
	if err := g.c.do(ctx, token, http.MethodGet, "/properties", query, nil, &out); err != nil {
		return nil, err
	}
	return out.Properties, nil
}

// CreateProperty creates a property under its parent account.
func (g *GA4Client) CreateProperty(ctx context.Context, token string, p Property) (Property, error) {
	var out Property
	if err := g.c.do(ctx, token, http.MethodPost, "/properties", nil, p, &out); err != nil {
		return Property{}, err
	}
	return out, nil
}

// UpdateProperty patches mutable property fields.
func (g *GA4Client) UpdateProperty(ctx context.Context, token string, p Property) (Property, error) {
	var out Property
	query := url.Values{"updateMask": {"displayName,timeZone,currencyCode,industryCategory"}}
	if err := g.c.do(ctx, token, http.MethodPatch, "/"+p.Name, query, p, &out); err != nil {
		return Property{}, err
	}
	return out, nil
}

// DeleteProperty soft-deletes a property (moved to trash upstream).
func (g *GA4Client) DeleteProperty(ctx context.Context, token string, p Property) error {
	return g.c.do(ctx, token, http.MethodDelete, "/"+p.Name, nil, nil, nil)
}

// ---- Data streams ----

// ListDataStreams returns streams under a property, e.g. "properties/123".
func (g *GA4Client) ListDataStreams(ctx context.Context, token, property string) ([]DataStream, error) {
	var out struct {
		DataStreams []DataStream `json:"dataStreams"`
	}
	if err := g.c.do(ctx, token, http.MethodGet, "/"+property+"/dataStreams", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.DataStreams, nil
}

// CreateDataStream creates a stream under its property.
func (g *GA4Client) CreateDataStream(ctx context.Context, token string, d DataStream) (DataStream, error) {
	var out DataStream
	if err := g.c.do(ctx, token, http.MethodPost, "/"+d.Property+"/dataStreams", nil, d, &out); err != nil {
		return DataStream{}, err
	}
	return out, nil
}

// UpdateDataStream patches mutable stream fields.
func (g *GA4Client) UpdateDataStream(ctx context.Context, token string, d DataStream) (DataStream, error) {
	var out DataStream
	query := url.Values{"updateMask": {"displayName,webStreamData.defaultUri"}}
	if err := g.c.do(ctx, token, http.MethodPatch, "/"+d.Name, query, d, &out); err != nil {
		return DataStream{}, err
	}
	return out, nil
}

// DeleteDataStream removes a stream permanently.
func (g *GA4Client) DeleteDataStream(ctx context.Context, token string, d DataStream) error {
	return g.c.do(ctx, token, http.MethodDelete, "/"+d.Name, nil, nil, nil)
}

// ---- Custom dimensions ----

// ListCustomDimensions returns dimensions under a property.
func (g *GA4Client) ListCustomDimensions(ctx context.Context, token, property string) ([]CustomDimension, error) {
	var out struct {
		CustomDimensions []CustomDimension `json:"customDimensions"`
	}
	if err := g.c.do(ctx, token, http.MethodGet, "/"+property+"/customDimensions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.CustomDimensions, nil
}

// CreateCustomDimension creates a dimension under its property.
func (g *GA4Client) CreateCustomDimension(ctx context.Context, token string, d CustomDimension) (CustomDimension, error) {
	var out CustomDimension
	if err := g.c.do(ctx, token, http.MethodPost, "/"+d.Property+"/customDimensions", nil, d, &out); err != nil {
		return CustomDimension{}, err
	}
	return out, nil
}

// UpdateCustomDimension patches mutable dimension fields. The parameter
// name and scope are immutable upstream.
func (g *GA4Client) UpdateCustomDimension(ctx context.Context, token string, d CustomDimension) (CustomDimension, error) {
	var out CustomDimension
	query := url.Values{"updateMask": {"displayName,description"}}
	if err := g.c.do(ctx, token, http.MethodPatch, "/"+d.Name, query, d, &out); err != nil {
		return CustomDimension{}, err
	}
	return out, nil
}

// ArchiveCustomDimension archives a dimension. GA4 has no hard delete for
// dimensions; archive is the delete operation.
func (g *GA4Client) ArchiveCustomDimension(ctx context.Context, token string, d CustomDimension) error {
	return g.c.do(ctx, token, http.MethodPost, "/"+d.Name+":archive", nil, struct{}{}, nil)
}

// ---- Custom metrics ----

// ListCustomMetrics returns metrics under a property.
func (g *GA4Client) ListCustomMetrics(ctx context.Context, token, property string) ([]CustomMetric, error) {
	var out struct {
		CustomMetrics []CustomMetric `json:"customMetrics"`
	}
	if err := g.c.do(ctx, token, http.MethodGet, "/"+property+"/customMetrics", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.CustomMetrics, nil
}

// CreateCustomMetric creates a metric under its property.
func (g *GA4Client) CreateCustomMetric(ctx context.Context, token string, m CustomMetric) (CustomMetric, error) {
	var out CustomMetric
	if err := g.c.do(ctx, token, http.MethodPost, "/"+m.Property+"/customMetrics", nil, m, &out); err != nil {
		return CustomMetric{}, err
	}
	return out, nil
}

// UpdateCustomMetric patches mutable metric fields.
func (g *GA4Client) UpdateCustomMetric(ctx context.Context, token string, m CustomMetric) (CustomMetric, error) {
	var out CustomMetric
	query := url.Values{"updateMask": {"displayName,description,measurementUnit"}}
	if err := g.c.do(ctx, token, http.MethodPatch, "/"+m.Name, query, m, &out); err != nil {
		return CustomMetric{}, err
	}
	return out, nil
}

// ArchiveCustomMetric archives a metric; metrics cannot be hard-deleted.
func (g *GA4Client) ArchiveCustomMetric(ctx context.Context, token string, m CustomMetric) error {
	return g.c.do(ctx, token, http.MethodPost, "/"+m.Name+":archive", nil, struct{}{}, nil)
}

// ---- Access bindings ----

// ListAccessBindings returns bindings under a property.
func (g *GA4Client) ListAccessBindings(ctx context.Context, token, property string) ([]AccessBinding, error) {
	var out struct {
		AccessBindings []AccessBinding `json:"accessBindings"`
	}
	if err := g.c.do(ctx, token, http.MethodGet, "/"+property+"/accessBindings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.AccessBindings, nil
}

// CreateAccessBinding grants a user roles on a property.
func (g *GA4Client) CreateAccessBinding(ctx context.Context, token string, b AccessBinding) (AccessBinding, error) {
	var out AccessBinding
	if err := g.c.do(ctx, token, http.MethodPost, "/"+b.Property+"/accessBindings", nil, b, &out); err != nil {
		return AccessBinding{}, err
	}
	return out, nil
}

// UpdateAccessBinding replaces the roles on a binding.
func (g *GA4Client) UpdateAccessBinding(ctx context.Context, token string, b AccessBinding) (AccessBinding, error) {
	var out AccessBinding
	if err := g.c.do(ctx, token, http.MethodPatch, "/"+b.Name, nil, b, &out); err != nil {
		return AccessBinding{}, err
	}
	return out, nil
}

// DeleteAccessBinding revokes a user's access to a property.
func (g *GA4Client) DeleteAccessBinding(ctx context.Context, token string, b AccessBinding) error {
	return g.c.do(ctx, token, http.MethodDelete, "/"+b.Name, nil, nil, nil)
}
