package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"

	"github.com/vitrinehub/vitrine-backend/api/middleware"
	"github.com/vitrinehub/vitrine-backend/internal/cart"
	"github.com/vitrinehub/vitrine-backend/internal/catalog"
	"github.com/vitrinehub/vitrine-backend/internal/checkout"
	"github.com/vitrinehub/vitrine-backend/internal/engine"
	"github.com/vitrinehub/vitrine-backend/internal/gate"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

type stubEngine struct {
	view    *engine.View
	cart    *cart.Cart
	gate    gate.Result
	success *checkout.OrderSuccess
	code    string
	found   bool
	link    string
	query   string
	err     error

	lastSlug      string
	lastSession   string
	lastProductID string
	lastQuantity  int
	lastDelta     int
	lastSecret    string
	lastCustomer  types.CustomerInfo
	lastCode      string
	lastChange    catalog.FilterChange
	clearCalls    int
	dismissCalls  int
}

func (s *stubEngine) View(_ context.Context, slug, sessionID string, _ url.Values) (*engine.View, error) {
	s.lastSlug, s.lastSession = slug, sessionID
	return s.view, s.err
}

func (s *stubEngine) UpdateFilter(_ url.Values, change catalog.FilterChange) string {
	s.lastChange = change
	return s.query
}

func (s *stubEngine) AddToCart(_ context.Context, slug, sessionID, productID string, quantity int) (*cart.Cart, error) {
	s.lastSlug, s.lastSession, s.lastProductID, s.lastQuantity = slug, sessionID, productID, quantity
	return s.cart, s.err
}

func (s *stubEngine) RemoveFromCart(_ context.Context, slug, sessionID, productID string) (*cart.Cart, error) {
	s.lastSlug, s.lastSession, s.lastProductID = slug, sessionID, productID
	return s.cart, s.err
}

func (s *stubEngine) UpdateQuantity(_ context.Context, slug, sessionID, productID string, delta int) (*cart.Cart, error) {
	s.lastSlug, s.lastSession, s.lastProductID, s.lastDelta = slug, sessionID, productID, delta
	return s.cart, s.err
}

func (s *stubEngine) ClearCart(_ context.Context, slug, sessionID string) error {
	s.lastSlug, s.lastSession = slug, sessionID
	s.clearCalls++
	return s.err
}

func (s *stubEngine) Unlock(_ context.Context, slug, sessionID, secret string) (gate.Result, error) {
	s.lastSlug, s.lastSession, s.lastSecret = slug, sessionID, secret
	return s.gate, s.err
}

func (s *stubEngine) Lock(_ context.Context, slug, sessionID string) error {
	s.lastSlug, s.lastSession = slug, sessionID
	return s.err
}

func (s *stubEngine) Finalize(_ context.Context, slug, sessionID string, customer types.CustomerInfo) (*checkout.OrderSuccess, error) {
	s.lastSlug, s.lastSession, s.lastCustomer = slug, sessionID, customer
	return s.success, s.err
}

func (s *stubEngine) SaveCart(_ context.Context, slug, sessionID string) (string, error) {
	s.lastSlug, s.lastSession = slug, sessionID
	return s.code, s.err
}

func (s *stubEngine) LoadCart(_ context.Context, slug, sessionID, code string) (*cart.Cart, bool, error) {
	s.lastSlug, s.lastSession, s.lastCode = slug, sessionID, code
	return s.cart, s.found, s.err
}

func (s *stubEngine) MessageLink(_ context.Context, slug, sessionID string) (string, error) {
	s.lastSlug, s.lastSession = slug, sessionID
	return s.link, s.err
}

func (s *stubEngine) DismissSuccess(_ context.Context, slug, sessionID string) error {
	s.lastSlug, s.lastSession = slug, sessionID
	s.dismissCalls++
	return s.err
}

func scopedRequest(r *http.Request) *http.Request {
	ctx := middleware.WithStoreSlug(r.Context(), "loja-teste")
	ctx = middleware.WithSessionID(ctx, "sess-1")
	return r.WithContext(ctx)
}

func serve(handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	return rec
}
