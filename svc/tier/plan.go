package tier

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// OperationLimits is a plan's ceiling for one feature.
type OperationLimits struct {
	Create int64 `yaml:"create"`
	Update int64 `yaml:"update"`
	Delete int64 `yaml:"delete"`
}

// Plan defines the limits a subscription tier grants.
type Plan struct {
	ID     string                      `yaml:"id"`
	Name   string                      `yaml:"name"`
	Limits map[Feature]OperationLimits `yaml:"limits"`
}

// TierLimits materializes the plan into limit rows for a tenant with all
// usage counters at zero.
func (p Plan) TierLimits(tenantID uuid.UUID) []Limit {
	limits := make([]Limit, 0, len(p.Limits))
	for feature, ops := range p.Limits {
		limits = append(limits, Limit{
			TenantID:    tenantID,
			Feature:     feature,
			CreateLimit: ops.Create,
			UpdateLimit: ops.Update,
			DeleteLimit: ops.Delete,
		})
	}
	return limits
}

// Source loads the plan catalog.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

// StaticSource serves a fixed, pre-validated catalog. Used in tests and as
// the fallback when no catalog file is configured.
type StaticSource map[string]Plan

// Load returns the static catalog.
func (s StaticSource) Load(ctx context.Context) (map[string]Plan, error) {
	return s, nil
}

// FileSource loads the catalog from a YAML file of the form:
//
//	plans:
//	  - id: starter
//	    name: Starter
//	    limits:
//	      GTMContainer: {create: 3, update: 30, delete: 3}
type FileSource struct {
	Path string
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// Load parses and validates the catalog file.
func (s FileSource) Load(ctx context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("tier: read plan catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, errors.Join(ErrInvalidPlanConfig, err)
	}

	plans := make(map[string]Plan, len(file.Plans))
	for _, plan := range file.Plans {
		if err := validatePlan(plan); err != nil {
			return nil, err
		}
		if _, dup := plans[plan.ID]; dup {
			return nil, errors.Join(ErrInvalidPlanConfig, fmt.Errorf("duplicate plan id %q", plan.ID))
		}
		plans[plan.ID] = plan
	}
	return plans, nil
}

func validatePlan(plan Plan) error {
	if plan.ID == "" {
		return errors.Join(ErrInvalidPlanConfig, errors.New("plan id is required"))
	}
	for feature, ops := range plan.Limits {
		for kind, v := range map[OperationKind]int64{
			OperationCreate: ops.Create,
			OperationUpdate: ops.Update,
			OperationDelete: ops.Delete,
		} {
			if v < Unlimited {
				return errors.Join(ErrInvalidPlanConfig,
					fmt.Errorf("plan %q feature %q: negative %s limit %d", plan.ID, feature, kind, v))
			}
		}
	}
	return nil
}
