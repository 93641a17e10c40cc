package enums

// PriceMode controls how a store exposes prices to anonymous shoppers.
type PriceMode string

const (
	// PriceModeOpen shows sale prices to everyone.
	PriceModeOpen PriceMode = "open"
	// PriceModeCostGated shows cost prices openly and keeps sale prices behind
	// the gate until the shopper unlocks.
	PriceModeCostGated PriceMode = "cost_gated"
)

func (p PriceMode) Valid() bool {
	return p == PriceModeOpen || p == PriceModeCostGated
}
