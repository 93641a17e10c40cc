package enums

// SortKey orders the visible catalog subset.
type SortKey string

const (
	SortName          SortKey = "name"
	SortPriceAsc      SortKey = "price_asc"
	SortPriceDesc     SortKey = "price_desc"
	SortReferenceAsc  SortKey = "reference_asc"
	SortReferenceDesc SortKey = "reference_desc"
	SortCreatedAsc    SortKey = "created_asc"
	SortCreatedDesc   SortKey = "created_desc"
)

func (s SortKey) Valid() bool {
	switch s {
	case SortName, SortPriceAsc, SortPriceDesc, SortReferenceAsc, SortReferenceDesc, SortCreatedAsc, SortCreatedDesc:
		return true
	}
	return false
}

// ParseSortKey normalizes a raw query value, falling back to name ordering.
func ParseSortKey(raw string) SortKey {
	key := SortKey(raw)
	if key.Valid() {
		return key
	}
	return SortName
}
