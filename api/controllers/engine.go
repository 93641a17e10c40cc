package controllers

import (
	"context"
	"net/url"

	"github.com/vitrinehub/vitrine-backend/internal/cart"
	"github.com/vitrinehub/vitrine-backend/internal/catalog"
	"github.com/vitrinehub/vitrine-backend/internal/checkout"
	"github.com/vitrinehub/vitrine-backend/internal/engine"
	"github.com/vitrinehub/vitrine-backend/internal/gate"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// Engine is the storefront surface the controllers drive.
type Engine interface {
	View(ctx context.Context, slug, sessionID string, query url.Values) (*engine.View, error)
	UpdateFilter(query url.Values, change catalog.FilterChange) string
	AddToCart(ctx context.Context, slug, sessionID, productID string, quantity int) (*cart.Cart, error)
	RemoveFromCart(ctx context.Context, slug, sessionID, productID string) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, slug, sessionID, productID string, delta int) (*cart.Cart, error)
	ClearCart(ctx context.Context, slug, sessionID string) error
	Unlock(ctx context.Context, slug, sessionID, secret string) (gate.Result, error)
	Lock(ctx context.Context, slug, sessionID string) error
	Finalize(ctx context.Context, slug, sessionID string, customer types.CustomerInfo) (*checkout.OrderSuccess, error)
	SaveCart(ctx context.Context, slug, sessionID string) (string, error)
	LoadCart(ctx context.Context, slug, sessionID, code string) (*cart.Cart, bool, error)
	MessageLink(ctx context.Context, slug, sessionID string) (string, error)
	DismissSuccess(ctx context.Context, slug, sessionID string) error
}
