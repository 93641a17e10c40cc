package enums

// Feature identifies a gated storefront capability.
type Feature string

const (
	FeatureViewPrices    Feature = "view_prices"
	FeatureFinalizeOrder Feature = "finalize_order"
	FeatureSaveCart      Feature = "save_cart"
)

func (f Feature) Valid() bool {
	switch f {
	case FeatureViewPrices, FeatureFinalizeOrder, FeatureSaveCart:
		return true
	}
	return false
}
