package google_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbridge/tagbridge/svc/google"
)

func testConfig(baseURL string) google.Config {
	return google.Config{
		GTMBaseURL:  baseURL,
		GA4BaseURL:  baseURL,
		HTTPTimeout: 5 * time.Second,
	}
}

func googleError(w http.ResponseWriter, code int, status, reason, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
			"status":  status,
			"errors":  []map[string]string{{"reason": reason}},
		},
	})
}

func TestGTMListAccounts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"account": []map[string]any{
				{"accountId": "100", "name": "Main"},
				{"accountId": "200", "name": "Staging"},
			},
		})
	}))
	defer srv.Close()

	gtm := google.NewGTMClient(testConfig(srv.URL))

	accounts, err := gtm.ListAccounts(context.Background(), "tok-1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Main", accounts[0].Name)
	assert.Equal(t, "200", accounts[1].AccountID)
}

func TestGTMContainerLifecycle(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/accounts/100/containers":
			var in google.Container
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			in.ContainerID = "555"
			in.PublicID = "GTM-ABC123"
			_ = json.NewEncoder(w).Encode(in)
		case r.Method == http.MethodPut && r.URL.Path == "/accounts/100/containers/555":
			var in google.Container
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			_ = json.NewEncoder(w).Encode(in)
		case r.Method == http.MethodDelete && r.URL.Path == "/accounts/100/containers/555":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	gtm := google.NewGTMClient(testConfig(srv.URL))
	ctx := context.Background()

	created, err := gtm.CreateContainer(ctx, "tok", google.Container{
		AccountID:    "100",
		Name:         "Web Container",
		UsageContext: []string{"web"},
	})
	require.NoError(t, err)
	assert.Equal(t, "555", created.ContainerID)
	assert.Equal(t, "GTM-ABC123", created.PublicID)

	created.Name = "Renamed"
	updated, err := gtm.UpdateContainer(ctx, "tok", created)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	require.NoError(t, gtm.DeleteContainer(ctx, "tok", created))
}

func TestGA4CustomDimensionArchive(t *testing.T) {
	t.Parallel()

	var archivedPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		archivedPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ga4 := google.NewGA4Client(testConfig(srv.URL))

	err := ga4.ArchiveCustomDimension(context.Background(), "tok", google.CustomDimension{
		Name: "properties/123/customDimensions/456",
	})
	require.NoError(t, err)
	assert.Equal(t, "/properties/123/customDimensions/456:archive", archivedPath)
}

func TestGA4ListPropertiesFilter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "parent:accounts/77", r.URL.Query().Get("filter"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"properties": []map[string]any{
				{"name": "properties/1", "displayName": "Shop"},
			},
		})
	}))
	defer srv.Close()

	ga4 := google.NewGA4Client(testConfig(srv.URL))

	props, err := ga4.ListProperties(context.Background(), "tok", "accounts/77")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "Shop", props[0].DisplayName)
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   int
		status string
		reason string
		check  func(error) bool
	}{
		{"429 is quota", http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", "rateLimitExceeded", google.IsQuota},
		{"403 rateLimitExceeded is quota", http.StatusForbidden, "PERMISSION_DENIED", "rateLimitExceeded", google.IsQuota},
		{"403 userRateLimitExceeded is quota", http.StatusForbidden, "PERMISSION_DENIED", "userRateLimitExceeded", google.IsQuota},
		{"403 limitExceeded is feature limit", http.StatusForbidden, "PERMISSION_DENIED", "limitExceeded", google.IsFeatureLimit},
		{"404 is not found", http.StatusNotFound, "NOT_FOUND", "notFound", google.IsNotFound},
		{"401 is auth", http.StatusUnauthorized, "UNAUTHENTICATED", "authError", google.IsAuth},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				googleError(w, tt.code, tt.status, tt.reason, "upstream said no")
			}))
			defer srv.Close()

			gtm := google.NewGTMClient(testConfig(srv.URL))

			_, err := gtm.ListAccounts(context.Background(), "tok")
			require.Error(t, err)
			assert.True(t, tt.check(err))

			var apiErr *google.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.StatusCode)
			assert.Equal(t, "upstream said no", apiErr.Message)
		})
	}
}

func TestClassifiersRejectOtherErrors(t *testing.T) {
	t.Parallel()

	err := assert.AnError
	assert.False(t, google.IsQuota(err))
	assert.False(t, google.IsNotFound(err))
	assert.False(t, google.IsFeatureLimit(err))
	assert.False(t, google.IsAuth(err))

	featureLimit := &google.APIError{StatusCode: 403, Reason: "limitExceeded"}
	assert.False(t, google.IsQuota(featureLimit))
	assert.True(t, google.IsFeatureLimit(featureLimit))
}

func TestValidateRejectsIncompleteForms(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, google.Container{Name: "no account"}.Validate(), google.ErrInvalidForm)
	assert.ErrorIs(t, google.Tag{AccountID: "1", ContainerID: "2", WorkspaceID: "3"}.Validate(), google.ErrInvalidForm)
	assert.ErrorIs(t, google.Property{}.Validate(), google.ErrInvalidForm)
	assert.ErrorIs(t, google.CustomMetric{DisplayName: "x", Scope: "EVENT"}.Validate(), google.ErrInvalidForm)

	assert.NoError(t, google.Container{
		AccountID:    "100",
		Name:         "ok",
		UsageContext: []string{"web"},
	}.Validate())
	assert.NoError(t, google.AccessBinding{
		Property: "properties/1",
		User:     "user@example.com",
		Roles:    []string{"predefinedRoles/read"},
	}.Validate())
}
