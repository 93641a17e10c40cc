package features

import (
	"testing"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

func storeWithMatrix(matrix types.FeatureMatrix, trial bool) *models.Store {
	store := &models.Store{IsTrial: trial}
	if matrix != nil {
		store.Plan = &models.BillingPlan{ID: "plan-pro", Features: matrix}
	}
	return store
}

func TestResolveMatrixEntryIsAuthoritative(t *testing.T) {
	svc := NewService(config.TrialConfig{AllowSaveCart: true})

	// An explicit deny wins even for trial stores with a permissive override.
	store := storeWithMatrix(types.FeatureMatrix{"save_cart": false}, true)
	decision := svc.Resolve(store, enums.FeatureSaveCart)
	if decision.Allowed || decision.Source != SourcePlanMatrix {
		t.Fatalf("Resolve() = %+v, want matrix deny", decision)
	}

	store = storeWithMatrix(types.FeatureMatrix{"view_prices": true}, false)
	decision = svc.Resolve(store, enums.FeatureViewPrices)
	if !decision.Allowed || decision.Source != SourcePlanMatrix {
		t.Fatalf("Resolve() = %+v, want matrix allow", decision)
	}
}

func TestResolveTrialOverride(t *testing.T) {
	svc := NewService(config.TrialConfig{
		AllowViewPrices:    true,
		AllowFinalizeOrder: false,
		AllowSaveCart:      false,
	})
	store := storeWithMatrix(nil, true)

	if d := svc.Resolve(store, enums.FeatureViewPrices); !d.Allowed || d.Source != SourceTrialOverride {
		t.Fatalf("view_prices = %+v", d)
	}
	if d := svc.Resolve(store, enums.FeatureFinalizeOrder); d.Allowed {
		t.Fatalf("finalize_order = %+v, want trial deny", d)
	}
}

func TestResolveDefaultAllowForPaidStores(t *testing.T) {
	svc := NewService(config.TrialConfig{})
	store := storeWithMatrix(types.FeatureMatrix{}, false)

	d := svc.Resolve(store, enums.FeatureSaveCart)
	if !d.Allowed || d.Source != SourceDefaultAllow {
		t.Fatalf("Resolve() = %+v, want default allow", d)
	}
}

func TestResolveDeniesInvalidInput(t *testing.T) {
	svc := NewService(config.TrialConfig{AllowViewPrices: true})

	if d := svc.Resolve(nil, enums.FeatureViewPrices); d.Allowed {
		t.Fatalf("nil store = %+v, want deny", d)
	}
	if d := svc.Resolve(storeWithMatrix(nil, false), enums.Feature("teleport")); d.Allowed {
		t.Fatalf("unknown feature = %+v, want deny", d)
	}
}
