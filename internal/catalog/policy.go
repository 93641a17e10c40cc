package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// DisplayPolicy collects the display flags a store configures, validated once
// when the snapshot is built instead of consumed ad hoc by each computation.
type DisplayPolicy struct {
	PriceMode          enums.PriceMode
	InstallmentMax     int
	InstallmentMinUnit decimal.Decimal
	HasGatePassword    bool
}

// PolicyFromStore normalizes a store's raw settings into a DisplayPolicy.
func PolicyFromStore(store *models.Store) DisplayPolicy {
	policy := DisplayPolicy{PriceMode: enums.PriceModeOpen}
	if store == nil {
		return policy
	}
	if store.PriceMode.Valid() {
		policy.PriceMode = store.PriceMode
	}
	if store.InstallmentMax > 1 {
		policy.InstallmentMax = store.InstallmentMax
		policy.InstallmentMinUnit = decimal.NewFromInt(int64(store.InstallmentMinUnit))
	}
	policy.HasGatePassword = store.HasGatePassword()
	return policy
}

// StartsLocked reports whether new shopper sessions begin with prices hidden.
func (p DisplayPolicy) StartsLocked() bool {
	return p.PriceMode == enums.PriceModeCostGated
}

// Installment is a "N x R$ amount" display suggestion.
type Installment struct {
	Count  int
	Amount decimal.Decimal
}

// InstallmentFor computes the largest installment count allowed by the policy
// for the given price: at most InstallmentMax parts, each worth at least the
// configured minimum. Returns false when the price does not split at all.
func (p DisplayPolicy) InstallmentFor(price decimal.Decimal) (Installment, bool) {
	if p.InstallmentMax < 2 || !price.IsPositive() {
		return Installment{}, false
	}
	for count := p.InstallmentMax; count >= 2; count-- {
		amount := price.Div(decimal.NewFromInt(int64(count))).Round(2)
		if p.InstallmentMinUnit.IsPositive() && amount.LessThan(p.InstallmentMinUnit) {
			continue
		}
		return Installment{Count: count, Amount: amount}, true
	}
	return Installment{}, false
}
