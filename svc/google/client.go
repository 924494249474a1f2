// Package google wraps the Google Tag Manager API v2 and the Google
// Analytics Admin API v1beta with per-call bearer tokens and typed error
// classification.
//
// The clients are deliberately thin: no retries, no rate limiting, no
// caching. Those concerns belong to the orchestration layer, which needs to
// make the policy decisions per tenant. A client call maps to exactly one
// HTTP round trip.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config holds the upstream endpoints. Overridable for tests against a
// local fake.
type Config struct {
	GTMBaseURL  string        `env:"GTM_API_BASE_URL" envDefault:"https://www.googleapis.com/tagmanager/v2"`
	GA4BaseURL  string        `env:"GA4_API_BASE_URL" envDefault:"https://analyticsadmin.googleapis.com/v1beta"`
	HTTPTimeout time.Duration `env:"GOOGLE_HTTP_TIMEOUT" envDefault:"30s"`
}

// client is the shared JSON transport under both API surfaces.
type client struct {
	http    *http.Client
	baseURL string
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// errorEnvelope is Google's standard error response body.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// do performs one authenticated JSON round trip. Non-2xx responses come
// back as *APIError; transport failures as plain errors.
func (c *client) do(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("google: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("google: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("google: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("google: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("google: decode response: %w", err)
		}
	}
	return nil
}

func parseAPIError(statusCode int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
		if len(envelope.Error.Errors) > 0 {
			apiErr.Reason = envelope.Error.Errors[0].Reason
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
