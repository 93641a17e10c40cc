package engine

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartpkg "github.com/vitrinehub/vitrine-backend/internal/cart"
	"github.com/vitrinehub/vitrine-backend/internal/catalog"
	"github.com/vitrinehub/vitrine-backend/internal/checkout"
	gatepkg "github.com/vitrinehub/vitrine-backend/internal/gate"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

type stubCatalog struct {
	snapshot *catalog.Snapshot
}

func (s *stubCatalog) SnapshotBySlug(ctx context.Context, slug string) (*catalog.Snapshot, error) {
	return s.snapshot, nil
}

type stubCarts struct {
	current *cartpkg.Cart
	added   []cartpkg.Line
}

func (s *stubCarts) Get(ctx context.Context, storeID, sessionID string) (*cartpkg.Cart, error) {
	if s.current == nil {
		return &cartpkg.Cart{}, nil
	}
	return s.current, nil
}

func (s *stubCarts) Add(ctx context.Context, storeID, sessionID string, line cartpkg.Line) (*cartpkg.Cart, error) {
	s.added = append(s.added, line)
	if s.current == nil {
		s.current = &cartpkg.Cart{}
	}
	s.current.Lines = append(s.current.Lines, line)
	return s.current, nil
}

func (s *stubCarts) Remove(ctx context.Context, storeID, sessionID, productID string) (*cartpkg.Cart, error) {
	return s.current, nil
}

func (s *stubCarts) UpdateQuantity(ctx context.Context, storeID, sessionID, productID string, delta int) (*cartpkg.Cart, error) {
	return s.current, nil
}

func (s *stubCarts) Replace(ctx context.Context, storeID, sessionID string, lines []cartpkg.Line) (*cartpkg.Cart, error) {
	s.current = &cartpkg.Cart{Lines: lines}
	return s.current, nil
}

func (s *stubCarts) Clear(ctx context.Context, storeID, sessionID string) error {
	s.current = &cartpkg.Cart{}
	return nil
}

type stubGate struct {
	unlocked bool
}

func (s *stubGate) Unlock(ctx context.Context, store *models.Store, sessionID, secret string) (gatepkg.Result, error) {
	s.unlocked = true
	return gatepkg.Result{Granted: true}, nil
}

func (s *stubGate) Lock(ctx context.Context, store *models.Store, sessionID string) error {
	s.unlocked = false
	return nil
}

func (s *stubGate) Unlocked(ctx context.Context, store *models.Store, sessionID string) (bool, error) {
	return s.unlocked, nil
}

type stubCheckout struct {
	success  *checkout.OrderSuccess
	finalize func() (*checkout.OrderSuccess, error)
}

func (s *stubCheckout) Finalize(ctx context.Context, store *models.Store, sessionID string, customer types.CustomerInfo) (*checkout.OrderSuccess, error) {
	if s.finalize != nil {
		return s.finalize()
	}
	return s.success, nil
}

func (s *stubCheckout) Success(ctx context.Context, store *models.Store, sessionID string) (*checkout.OrderSuccess, error) {
	return s.success, nil
}

func (s *stubCheckout) Dismiss(ctx context.Context, store *models.Store, sessionID string) error {
	s.success = nil
	return nil
}

func (s *stubCheckout) MessageLink(ctx context.Context, store *models.Store, success *checkout.OrderSuccess, pricesVisible bool) (string, error) {
	return "https://wa.me/5511999990000?text=pedido", nil
}

type stubSavedCart struct {
	code string
	hit  bool
}

func (s *stubSavedCart) Save(ctx context.Context, store *models.Store, sessionID string) (string, error) {
	return s.code, nil
}

func (s *stubSavedCart) Load(ctx context.Context, store *models.Store, sessionID, code string) (*cartpkg.Cart, bool, error) {
	if !s.hit {
		return nil, false, nil
	}
	return &cartpkg.Cart{}, true, nil
}

type stubCustomers struct {
	known *types.CustomerInfo
}

func (s *stubCustomers) Remember(ctx context.Context, storeID, sessionID string, customer types.CustomerInfo) error {
	s.known = &customer
	return nil
}

func (s *stubCustomers) Recognize(ctx context.Context, storeID, sessionID string) (*types.CustomerInfo, error) {
	return s.known, nil
}

func (s *stubCustomers) Forget(ctx context.Context, storeID, sessionID string) error {
	s.known = nil
	return nil
}

type memoryGuards struct {
	data map[string]string
}

func newMemoryGuards() *memoryGuards { return &memoryGuards{data: map[string]string{}} }

func (m *memoryGuards) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, exists := m.data[key]; exists {
		return false, nil
	}
	m.data[key] = "1"
	return true, nil
}

func (m *memoryGuards) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *memoryGuards) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryGuards) InFlightKey(operation, storeID, sessionID string) string {
	return "inflight:" + operation + ":" + storeID + ":" + sessionID
}

func strPtr(s string) *string { return &s }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func testSnapshot(priceMode enums.PriceMode) *catalog.Snapshot {
	store := &models.Store{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Slug:      "loja",
		Name:      "Loja da Ana",
		PriceMode: priceMode,
	}
	products := []models.Product{
		{
			ID:        uuid.New(),
			StoreID:   store.ID,
			Reference: "TS-01",
			Name:      "Tinta spray",
			Brand:     strPtr("Acme"),
			Price:     decimal.RequireFromString("25.00"),
			CostPrice: decPtr(decimal.RequireFromString("14.00")),
			StockQty:  5,
		},
		{
			ID:        uuid.New(),
			StoreID:   store.ID,
			Reference: "RP-02",
			Name:      "Rolo de pintura",
			Price:     decimal.RequireFromString("12.50"),
			StockQty:  0,
		},
	}
	return catalog.NewSnapshot(store, products)
}

type engineFixture struct {
	engine    *Engine
	carts     *stubCarts
	gate      *stubGate
	checkout  *stubCheckout
	savedcart *stubSavedCart
	guards    *memoryGuards
	snapshot  *catalog.Snapshot
}

func newEngine(t *testing.T, priceMode enums.PriceMode) *engineFixture {
	t.Helper()

	f := &engineFixture{
		carts:     &stubCarts{},
		gate:      &stubGate{},
		checkout:  &stubCheckout{},
		savedcart: &stubSavedCart{code: "AB23CD"},
		guards:    newMemoryGuards(),
		snapshot:  testSnapshot(priceMode),
	}

	eng, err := New(Deps{
		Catalog:     &stubCatalog{snapshot: f.snapshot},
		Carts:       f.carts,
		Gate:        f.gate,
		Checkout:    f.checkout,
		SavedCart:   f.savedcart,
		Customers:   &stubCustomers{},
		Guards:      f.guards,
		PageSize:    12,
		InFlightTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.engine = eng
	return f
}

func TestViewOpenStoreShowsPrices(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)

	view, err := f.engine.View(context.Background(), "loja", "sess-1", nil)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}

	if !view.PricesVisible {
		t.Fatal("open store must reveal prices without unlocking")
	}
	if len(view.Products) != 2 {
		t.Fatalf("View() returned %d products", len(view.Products))
	}
	if view.Products[0].Price == nil {
		t.Fatal("visible session must include prices")
	}
	if view.TotalPages != 1 || view.Page != 1 {
		t.Fatalf("pagination = page %d of %d", view.Page, view.TotalPages)
	}
}

func TestViewCostGatedHidesSalePrices(t *testing.T) {
	f := newEngine(t, enums.PriceModeCostGated)

	view, err := f.engine.View(context.Background(), "loja", "sess-1", nil)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}

	if view.PricesVisible {
		t.Fatal("cost-gated store must start locked")
	}
	spray := view.Products[1] // name sort puts "Rolo" first, "Tinta" second
	if spray.Price != nil {
		t.Fatal("locked session must not see sale prices")
	}
	if spray.CostPrice == nil {
		t.Fatal("locked cost-gated session still sees the cost price")
	}
	if view.Cart.Total != nil {
		t.Fatal("locked session must not see the cart total")
	}
}

func TestViewAfterUnlockRevealsPrices(t *testing.T) {
	f := newEngine(t, enums.PriceModeCostGated)
	ctx := context.Background()

	result, err := f.engine.Unlock(ctx, "loja", "sess-1", "segredo")
	if err != nil || !result.Granted {
		t.Fatalf("Unlock() = %+v, %v", result, err)
	}

	view, _ := f.engine.View(ctx, "loja", "sess-1", nil)
	if !view.PricesVisible {
		t.Fatal("unlocked session must reveal prices")
	}
}

func TestViewAppliesFilterQuery(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)

	view, err := f.engine.View(context.Background(), "loja", "sess-1", url.Values{"q": {"spray"}})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.TotalMatches != 1 || view.Products[0].Reference != "TS-01" {
		t.Fatalf("filtered view = %+v", view.Products)
	}
	if view.Query != "q=spray" {
		t.Fatalf("Query = %q", view.Query)
	}
}

func TestUpdateFilterCarouselCanonicalQuery(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)

	brand := "Acme"
	query := f.engine.UpdateFilter(url.Values{"q": {"spray"}, "page": {"3"}}, catalog.FilterChange{CarouselBrand: &brand})

	if query != "brands=Acme&sort=reference_desc" {
		t.Fatalf("UpdateFilter() = %q", query)
	}
}

func TestUpdateFilterDropsDefaultsFromQuery(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)

	term := ""
	query := f.engine.UpdateFilter(url.Values{"q": {"spray"}}, catalog.FilterChange{Search: &term})

	if query != "" {
		t.Fatalf("UpdateFilter() = %q, want empty canonical query", query)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)

	_, err := f.engine.AddToCart(context.Background(), "loja", "sess-1", uuid.NewString(), 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("AddToCart() error = %v, want not found", err)
	}
	if len(f.carts.added) != 0 {
		t.Fatal("unknown product must not reach the cart")
	}
}

func TestAddToCartBuildsLineFromSnapshot(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)
	product := f.snapshot.Products[0]

	current, err := f.engine.AddToCart(context.Background(), "loja", "sess-1", product.ID.String(), 2)
	if err != nil {
		t.Fatalf("AddToCart() error = %v", err)
	}
	if len(current.Lines) != 1 {
		t.Fatalf("cart = %+v", current.Lines)
	}
	line := current.Lines[0]
	if line.Name != product.Name || !line.Price.Equal(product.Price) || line.Quantity != 2 {
		t.Fatalf("line = %+v", line)
	}
}

func TestFinalizeGuardBlocksConcurrentSubmit(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)
	ctx := context.Background()
	storeID := f.snapshot.Store.ID.String()

	// Simulate an in-flight finalize holding the guard.
	key := f.guards.InFlightKey(opFinalize, storeID, "sess-1")
	_, _ = f.guards.SetNX(ctx, key, "1", time.Minute)

	_, err := f.engine.Finalize(ctx, "loja", "sess-1", types.CustomerInfo{Name: "Ana", Phone: "11999990000"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("Finalize() error = %v, want conflict", err)
	}

	view, _ := f.engine.View(ctx, "loja", "sess-1", nil)
	if !view.Busy.Submitting {
		t.Fatal("busy flag must reflect the held guard")
	}
}

func TestFinalizeReleasesGuard(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)
	f.checkout.finalize = func() (*checkout.OrderSuccess, error) {
		return &checkout.OrderSuccess{OrderID: "ord-1", DisplayID: "1042"}, nil
	}
	ctx := context.Background()

	if _, err := f.engine.Finalize(ctx, "loja", "sess-1", types.CustomerInfo{Name: "Ana", Phone: "11999990000"}); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	// Guard released: a second submit is allowed again.
	if _, err := f.engine.Finalize(ctx, "loja", "sess-1", types.CustomerInfo{Name: "Ana", Phone: "11999990000"}); err != nil {
		t.Fatalf("second Finalize() error = %v", err)
	}
}

func TestSaveAndLoadGuardsAreIndependent(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)
	ctx := context.Background()
	storeID := f.snapshot.Store.ID.String()

	// A held save guard blocks saving but not loading.
	key := f.guards.InFlightKey(opSaveCart, storeID, "sess-1")
	_, _ = f.guards.SetNX(ctx, key, "1", time.Minute)

	if _, err := f.engine.SaveCart(ctx, "loja", "sess-1"); pkgerrors.As(err) == nil {
		t.Fatalf("SaveCart() error = %v, want conflict", err)
	}
	if _, _, err := f.engine.LoadCart(ctx, "loja", "sess-1", "AB23CD"); err != nil {
		t.Fatalf("LoadCart() error = %v", err)
	}
}

func TestMessageLinkRequiresConfirmation(t *testing.T) {
	f := newEngine(t, enums.PriceModeOpen)

	_, err := f.engine.MessageLink(context.Background(), "loja", "sess-1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("MessageLink() error = %v, want not found", err)
	}

	f.checkout.success = &checkout.OrderSuccess{OrderID: "ord-1", DisplayID: "1042"}
	link, err := f.engine.MessageLink(context.Background(), "loja", "sess-1")
	if err != nil || link == "" {
		t.Fatalf("MessageLink() = %q, %v", link, err)
	}
}
