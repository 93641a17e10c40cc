package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// Query parameter names for the shareable-link codec.
const (
	paramSearch      = "q"
	paramBrands      = "brands"
	paramCategory    = "category"
	paramLaunches    = "launches"
	paramBestsellers = "bestsellers"
	paramFavorites   = "favorites"
	paramSort        = "sort"
	paramPage        = "page"
	paramView        = "view"
)

// Filter is the shopper's current catalog view: search, selections, sort,
// page and layout. It round-trips through the request query string so any
// filtered view is a shareable link.
type Filter struct {
	Search        string
	Brands        []string
	Category      string
	OnlyLaunches  bool
	OnlyBestsell  bool
	OnlyFavorites bool
	Sort          enums.SortKey
	Page          int
	View          enums.ViewMode
}

// DefaultFilter is the state a fresh session starts from.
func DefaultFilter() Filter {
	return Filter{Sort: enums.SortName, Page: 1, View: enums.ViewModeGrid}
}

// ParseQuery initializes a filter from query parameters, tolerating missing
// or malformed values by falling back to defaults.
func ParseQuery(values url.Values) Filter {
	f := DefaultFilter()
	if values == nil {
		return f
	}

	f.Search = strings.TrimSpace(values.Get(paramSearch))
	if raw := values.Get(paramBrands); raw != "" {
		for _, brand := range strings.Split(raw, ",") {
			if brand = strings.TrimSpace(brand); brand != "" {
				f.Brands = append(f.Brands, brand)
			}
		}
	}
	f.Category = strings.TrimSpace(values.Get(paramCategory))
	f.OnlyLaunches = values.Get(paramLaunches) == "1"
	f.OnlyBestsell = values.Get(paramBestsellers) == "1"
	f.OnlyFavorites = values.Get(paramFavorites) == "1"
	f.Sort = enums.ParseSortKey(values.Get(paramSort))
	if page, err := strconv.Atoi(values.Get(paramPage)); err == nil && page > 1 {
		f.Page = page
	}
	f.View = enums.ParseViewMode(values.Get(paramView))
	return f
}

// Values serializes the filter back to query parameters, omitting defaults so
// links stay short.
func (f Filter) Values() url.Values {
	values := url.Values{}
	if f.Search != "" {
		values.Set(paramSearch, f.Search)
	}
	if len(f.Brands) > 0 {
		values.Set(paramBrands, strings.Join(f.Brands, ","))
	}
	if f.Category != "" {
		values.Set(paramCategory, f.Category)
	}
	if f.OnlyLaunches {
		values.Set(paramLaunches, "1")
	}
	if f.OnlyBestsell {
		values.Set(paramBestsellers, "1")
	}
	if f.OnlyFavorites {
		values.Set(paramFavorites, "1")
	}
	if f.Sort != enums.SortName {
		values.Set(paramSort, string(f.Sort))
	}
	if f.Page > 1 {
		values.Set(paramPage, strconv.Itoa(f.Page))
	}
	if f.View != enums.ViewModeGrid {
		values.Set(paramView, string(f.View))
	}
	return values
}

// SetSearch replaces the search term and resets pagination.
func (f *Filter) SetSearch(term string) {
	f.Search = strings.TrimSpace(term)
	f.Page = 1
}

// SetBrands replaces the brand selection and resets pagination.
func (f *Filter) SetBrands(brands ...string) {
	f.Brands = nil
	for _, brand := range brands {
		if brand = strings.TrimSpace(brand); brand != "" {
			f.Brands = append(f.Brands, brand)
		}
	}
	f.Page = 1
}

// SetCategory replaces the category and resets pagination.
func (f *Filter) SetCategory(category string) {
	f.Category = strings.TrimSpace(category)
	f.Page = 1
}

// SetSort replaces the sort key and resets pagination.
func (f *Filter) SetSort(key enums.SortKey) {
	if key.Valid() {
		f.Sort = key
	}
	f.Page = 1
}

// SetFavoritesOnly toggles the favorites view and resets pagination.
func (f *Filter) SetFavoritesOnly(on bool) {
	f.OnlyFavorites = on
	f.Page = 1
}

// SetPage moves to another page without touching the other fields.
func (f *Filter) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	f.Page = page
}

// SelectBrandFromCarousel applies the brand-carousel entry point: the brand
// becomes the single selection and the sort is forced to reference-descending.
func (f *Filter) SelectBrandFromCarousel(brand string) {
	f.SetBrands(brand)
	f.Sort = enums.SortReferenceDesc
}

// FilterChange is one shopper interaction with the filter controls. Nil
// fields leave the current state untouched; set fields go through the
// corresponding mutator so the page-reset rules hold.
type FilterChange struct {
	Search        *string
	Brands        *[]string
	Category      *string
	Sort          *enums.SortKey
	FavoritesOnly *bool
	CarouselBrand *string
	Page          *int
}

// ApplyChange folds one interaction into the filter. Page lands last so an
// explicit page move survives the resets the other mutators perform.
func (f *Filter) ApplyChange(change FilterChange) {
	if change.Search != nil {
		f.SetSearch(*change.Search)
	}
	if change.Brands != nil {
		f.SetBrands(*change.Brands...)
	}
	if change.Category != nil {
		f.SetCategory(*change.Category)
	}
	if change.Sort != nil {
		f.SetSort(*change.Sort)
	}
	if change.FavoritesOnly != nil {
		f.SetFavoritesOnly(*change.FavoritesOnly)
	}
	if change.CarouselBrand != nil {
		f.SelectBrandFromCarousel(*change.CarouselBrand)
	}
	if change.Page != nil {
		f.SetPage(*change.Page)
	}
}

// Apply derives the visible product subset: filter, then stable sort. The
// favorites set comes from the shopper session; a nil set matches nothing.
func (f Filter) Apply(products []models.Product, favorites map[string]bool) []models.Product {
	visible := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p, favorites) {
			visible = append(visible, p)
		}
	}
	f.sortProducts(visible)
	return visible
}

func (f Filter) matches(p models.Product, favorites map[string]bool) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Reference), needle) &&
			!(p.Brand != nil && strings.Contains(strings.ToLower(*p.Brand), needle)) {
			return false
		}
	}
	if len(f.Brands) > 0 {
		if p.Brand == nil {
			return false
		}
		found := false
		for _, brand := range f.Brands {
			if strings.EqualFold(brand, *p.Brand) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Category != "" {
		if p.Category == nil || !strings.EqualFold(f.Category, *p.Category) {
			return false
		}
	}
	if f.OnlyLaunches && !p.IsLaunch {
		return false
	}
	if f.OnlyBestsell && !p.IsBestseller {
		return false
	}
	if f.OnlyFavorites && !favorites[p.ID.String()] {
		return false
	}
	return true
}

func (f Filter) sortProducts(products []models.Product) {
	less := func(a, b models.Product) bool {
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	}
	switch f.Sort {
	case enums.SortPriceAsc:
		less = func(a, b models.Product) bool {
			return a.EffectivePrice().LessThan(b.EffectivePrice())
		}
	case enums.SortPriceDesc:
		less = func(a, b models.Product) bool {
			return a.EffectivePrice().GreaterThan(b.EffectivePrice())
		}
	case enums.SortReferenceAsc:
		less = func(a, b models.Product) bool { return a.Reference < b.Reference }
	case enums.SortReferenceDesc:
		less = func(a, b models.Product) bool { return a.Reference > b.Reference }
	case enums.SortCreatedAsc:
		less = func(a, b models.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case enums.SortCreatedDesc:
		less = func(a, b models.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}
