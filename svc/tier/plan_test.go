package tier_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagbridge/tagbridge/svc/tier"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plans.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid catalog", func(t *testing.T) {
		t.Parallel()

		path := writeCatalog(t, `
plans:
  - id: starter
    name: Starter
    limits:
      GTMContainer: {create: 3, update: 30, delete: 3}
      GA4Properties: {create: 1, update: 10, delete: 1}
  - id: agency
    name: Agency
    limits:
      GTMContainer: {create: -1, update: -1, delete: -1}
`)

		plans, err := tier.FileSource{Path: path}.Load(ctx)
		require.NoError(t, err)
		require.Len(t, plans, 2)

		starter := plans["starter"]
		assert.Equal(t, "Starter", starter.Name)
		assert.EqualValues(t, 3, starter.Limits[tier.FeatureGTMContainer].Create)
		assert.EqualValues(t, 10, starter.Limits[tier.FeatureGA4Properties].Update)

		agency := plans["agency"]
		assert.Equal(t, tier.Unlimited, agency.Limits[tier.FeatureGTMContainer].Create)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := tier.FileSource{Path: "/nonexistent/plans.yaml"}.Load(ctx)
		assert.Error(t, err)
	})

	t.Run("plan without id rejected", func(t *testing.T) {
		t.Parallel()

		path := writeCatalog(t, `
plans:
  - name: Broken
    limits:
      GTMContainer: {create: 1, update: 1, delete: 1}
`)
		_, err := tier.FileSource{Path: path}.Load(ctx)
		assert.ErrorIs(t, err, tier.ErrInvalidPlanConfig)
	})

	t.Run("limit below -1 rejected", func(t *testing.T) {
		t.Parallel()

		path := writeCatalog(t, `
plans:
  - id: broken
    limits:
      GTMContainer: {create: -2, update: 1, delete: 1}
`)
		_, err := tier.FileSource{Path: path}.Load(ctx)
		assert.ErrorIs(t, err, tier.ErrInvalidPlanConfig)
	})

	t.Run("duplicate plan id rejected", func(t *testing.T) {
		t.Parallel()

		path := writeCatalog(t, `
plans:
  - id: starter
    limits:
      GTMContainer: {create: 1, update: 1, delete: 1}
  - id: starter
    limits:
      GTMContainer: {create: 2, update: 2, delete: 2}
`)
		_, err := tier.FileSource{Path: path}.Load(ctx)
		assert.ErrorIs(t, err, tier.ErrInvalidPlanConfig)
	})
}

func TestPlanTierLimits(t *testing.T) {
	t.Parallel()

	plan := tier.Plan{
		ID: "starter",
		Limits: map[tier.Feature]tier.OperationLimits{
			tier.FeatureGTMContainer: {Create: 3, Update: 30, Delete: 3},
		},
	}

	tenantID := uuid.New()
	limits := plan.TierLimits(tenantID)
	require.Len(t, limits, 1)
	assert.Equal(t, tenantID, limits[0].TenantID)
	assert.Equal(t, tier.FeatureGTMContainer, limits[0].Feature)
	assert.EqualValues(t, 3, limits[0].CreateLimit)
	assert.Zero(t, limits[0].CreateUsage)
}
