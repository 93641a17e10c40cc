package engine

import (
	"github.com/shopspring/decimal"

	"github.com/vitrinehub/vitrine-backend/internal/cart"
	"github.com/vitrinehub/vitrine-backend/internal/catalog"
	"github.com/vitrinehub/vitrine-backend/internal/checkout"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// StoreView is the branding subset presentation code needs.
type StoreView struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	LogoURL      string `json:"logo_url,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	GateEnabled  bool   `json:"gate_enabled"`
}

// DisplayProduct is one catalog entry shaped by the price gate: when the
// session is locked on a cost-gated store, the cost price shows and the sale
// price stays hidden.
type DisplayProduct struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Reference     string               `json:"reference"`
	Brand         string               `json:"brand,omitempty"`
	Category      string               `json:"category,omitempty"`
	ImageURLs     []string             `json:"image_urls,omitempty"`
	IsLaunch      bool                 `json:"is_launch"`
	IsBestseller  bool                 `json:"is_bestseller"`
	OutOfStock    bool                 `json:"out_of_stock"`
	Price         *decimal.Decimal     `json:"price,omitempty"`
	OriginalPrice *decimal.Decimal     `json:"original_price,omitempty"`
	CostPrice     *decimal.Decimal     `json:"cost_price,omitempty"`
	Installment   *catalog.Installment `json:"installment,omitempty"`
}

// BusyStates mirrors the per-operation in-flight guards so clients can
// disable triggers while a request is pending.
type BusyStates struct {
	Submitting  bool `json:"submitting"`
	Saving      bool `json:"saving"`
	LoadingCart bool `json:"loading_cart"`
}

// CartView is the cart projection; the total is omitted while prices are
// hidden.
type CartView struct {
	Lines []cart.Line      `json:"lines"`
	Count int              `json:"count"`
	Total *decimal.Decimal `json:"total,omitempty"`
}

// View is the full engine projection for one shopper session.
type View struct {
	Store         StoreView              `json:"store"`
	Products      []DisplayProduct       `json:"products"`
	Page          int                    `json:"page"`
	TotalPages    int                    `json:"total_pages"`
	TotalMatches  int                    `json:"total_matches"`
	Query         string                 `json:"query"`
	PricesVisible bool                   `json:"prices_visible"`
	Cart          CartView               `json:"cart"`
	Customer      *types.CustomerInfo    `json:"customer,omitempty"`
	PendingOrder  *checkout.OrderSuccess `json:"pending_order,omitempty"`
	Busy          BusyStates             `json:"busy"`
}

func storeView(store *models.Store, policy catalog.DisplayPolicy) StoreView {
	view := StoreView{
		ID:          store.ID.String(),
		Slug:        store.Slug,
		Name:        store.Name,
		GateEnabled: policy.StartsLocked(),
	}
	if store.LogoURL != nil {
		view.LogoURL = *store.LogoURL
	}
	view.ContactPhone = store.MessagingPhone()
	return view
}

func displayProduct(p models.Product, policy catalog.DisplayPolicy, pricesVisible bool) DisplayProduct {
	view := DisplayProduct{
		ID:           p.ID.String(),
		Name:         p.Name,
		Reference:    p.Reference,
		ImageURLs:    p.ImageURLs,
		IsLaunch:     p.IsLaunch,
		IsBestseller: p.IsBestseller,
		OutOfStock:   p.OutOfStock(),
	}
	if p.Brand != nil {
		view.Brand = *p.Brand
	}
	if p.Category != nil {
		view.Category = *p.Category
	}

	if pricesVisible {
		price := p.EffectivePrice()
		view.Price = &price
		view.OriginalPrice = p.OriginalPrice
		if inst, ok := policy.InstallmentFor(price); ok {
			view.Installment = &inst
		}
		return view
	}
	// Locked cost-gated sessions still see the cost price.
	view.CostPrice = p.CostPrice
	return view
}
