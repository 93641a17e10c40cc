package features

import (
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// Source names the tier of the resolution chain that produced a decision.
type Source string

const (
	SourcePlanMatrix    Source = "plan_matrix"
	SourceTrialOverride Source = "trial_override"
	SourceDefaultAllow  Source = "default_allow"
	SourceDefaultDeny   Source = "default_deny"
)

// Decision is one resolved feature permission.
type Decision struct {
	Feature enums.Feature
	Allowed bool
	Source  Source
}

// Service resolves feature permissions for a store. Decisions are computed on
// every call, never cached, so a plan change applies immediately.
type Service interface {
	Resolve(store *models.Store, feature enums.Feature) Decision
	Allowed(store *models.Store, feature enums.Feature) bool
}

type service struct {
	trial config.TrialConfig
}

// NewService builds the permission resolver with the global trial overrides.
func NewService(trial config.TrialConfig) Service {
	return &service{trial: trial}
}

// Resolve walks the tiers in fixed order: an explicit plan-matrix entry is
// authoritative; trial stores then fall to the global overrides; paid stores
// without an entry default to allowed; everything else is denied.
func (s *service) Resolve(store *models.Store, feature enums.Feature) Decision {
	decision := Decision{Feature: feature, Allowed: false, Source: SourceDefaultDeny}
	if store == nil || !feature.Valid() {
		return decision
	}

	if store.Plan != nil {
		if allowed, ok := store.Plan.Features.Lookup(string(feature)); ok {
			decision.Allowed = allowed
			decision.Source = SourcePlanMatrix
			return decision
		}
	}

	if store.IsTrial {
		decision.Allowed = s.trial.AllowByTrial(string(feature))
		decision.Source = SourceTrialOverride
		return decision
	}

	decision.Allowed = true
	decision.Source = SourceDefaultAllow
	return decision
}

func (s *service) Allowed(store *models.Store, feature enums.Feature) bool {
	return s.Resolve(store, feature).Allowed
}
