package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vitrinehub/vitrine-backend/internal/cart"
	"github.com/vitrinehub/vitrine-backend/internal/catalog"
	"github.com/vitrinehub/vitrine-backend/internal/checkout"
	"github.com/vitrinehub/vitrine-backend/internal/customers"
	"github.com/vitrinehub/vitrine-backend/internal/gate"
	"github.com/vitrinehub/vitrine-backend/internal/savedcart"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/metrics"
	"github.com/vitrinehub/vitrine-backend/pkg/pagination"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// Operation labels for guards and metrics.
const (
	opFinalize = "finalize"
	opSaveCart = "save_cart"
	opLoadCart = "load_cart"
	opUnlock   = "unlock"
)

type guardStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
	InFlightKey(operation, storeID, sessionID string) string
}

// Engine is the single facade presentation code talks to. It aggregates the
// catalog, filter state, cart, gate, finalizer and saved-cart codec behind
// one contract and guards the remote-touching operations per session.
type Engine struct {
	catalog   catalog.Service
	carts     cart.Service
	gate      gate.Service
	checkout  checkout.Service
	savedcart savedcart.Service
	customers customers.Service
	guards    guardStore

	pageSize    int
	inFlightTTL time.Duration
	metrics     *metrics.EngineMetrics
	logg        *logger.Logger
}

// Deps collects the engine's collaborators.
type Deps struct {
	Catalog   catalog.Service
	Carts     cart.Service
	Gate      gate.Service
	Checkout  checkout.Service
	SavedCart savedcart.Service
	Customers customers.Service
	Guards    guardStore

	PageSize    int
	InFlightTTL time.Duration
	Metrics     *metrics.EngineMetrics
	Logger      *logger.Logger
}

// New validates the dependency set and builds the engine.
func New(deps Deps) (*Engine, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("gate service required")
	}
	if deps.Checkout == nil {
		return nil, fmt.Errorf("checkout service required")
	}
	if deps.SavedCart == nil {
		return nil, fmt.Errorf("saved-cart service required")
	}
	if deps.Customers == nil {
		return nil, fmt.Errorf("customer service required")
	}
	if deps.Guards == nil {
		return nil, fmt.Errorf("guard store required")
	}
	if deps.InFlightTTL <= 0 {
		deps.InFlightTTL = 30 * time.Second
	}
	return &Engine{
		catalog:     deps.Catalog,
		carts:       deps.Carts,
		gate:        deps.Gate,
		checkout:    deps.Checkout,
		savedcart:   deps.SavedCart,
		customers:   deps.Customers,
		guards:      deps.Guards,
		pageSize:    pagination.NormalizePageSize(deps.PageSize),
		inFlightTTL: deps.InFlightTTL,
		metrics:     deps.Metrics,
		logg:        deps.Logger,
	}, nil
}

// View assembles the full projection for one session: the filtered and paged
// catalog, price visibility, cart summary, recognized customer, any pending
// confirmation and the busy flags.
func (e *Engine) View(ctx context.Context, slug, sessionID string, query url.Values) (*View, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	storeID := snapshot.Store.ID.String()

	visible, err := e.pricesVisible(ctx, snapshot, sessionID)
	if err != nil {
		return nil, err
	}

	filter := catalog.ParseQuery(query)
	matched := filter.Apply(snapshot.Products, nil)
	start, end := pagination.Slice(len(matched), filter.Page, e.pageSize)

	products := make([]DisplayProduct, 0, end-start)
	for _, p := range matched[start:end] {
		products = append(products, displayProduct(p, snapshot.Policy, visible))
	}

	current, err := e.carts.Get(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	cartView := CartView{Lines: current.Lines, Count: current.Count()}
	if visible {
		total := current.Total()
		cartView.Total = &total
	}

	view := &View{
		Store:         storeView(snapshot.Store, snapshot.Policy),
		Products:      products,
		Page:          pagination.NormalizePage(filter.Page),
		TotalPages:    pagination.TotalPages(len(matched), e.pageSize),
		TotalMatches:  len(matched),
		Query:         filter.Values().Encode(),
		PricesVisible: visible,
		Cart:          cartView,
	}

	// Recognition and confirmation are conveniences; their read errors never
	// break the view.
	if customer, err := e.customers.Recognize(ctx, storeID, sessionID); err == nil {
		view.Customer = customer
	}
	if pending, err := e.checkout.Success(ctx, snapshot.Store, sessionID); err == nil {
		view.PendingOrder = pending
	}
	view.Busy = e.busyStates(ctx, storeID, sessionID)

	return view, nil
}

// UpdateFilter folds one filter interaction into the current query state and
// returns the canonical query string for the updated shareable link. Pure
// query-state work, so it touches no store.
func (e *Engine) UpdateFilter(query url.Values, change catalog.FilterChange) string {
	filter := catalog.ParseQuery(query)
	filter.ApplyChange(change)
	return filter.Values().Encode()
}

// AddToCart resolves the product in the catalog snapshot and merges it into
// the session cart. A product outside the snapshot is an error with no
// partial state.
func (e *Engine) AddToCart(ctx context.Context, slug, sessionID, productID string, quantity int) (*cart.Cart, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	product, ok := snapshot.ProductByID(productID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the catalog")
	}

	line := cart.Line{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Price:     product.EffectivePrice(),
		Quantity:  quantity,
		Reference: product.Reference,
	}
	if len(product.ImageURLs) > 0 {
		line.ImageURL = product.ImageURLs[0]
	}
	return e.carts.Add(ctx, snapshot.Store.ID.String(), sessionID, line)
}

// RemoveFromCart deletes a line outright.
func (e *Engine) RemoveFromCart(ctx context.Context, slug, sessionID, productID string) (*cart.Cart, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return e.carts.Remove(ctx, snapshot.Store.ID.String(), sessionID, productID)
}

// UpdateQuantity applies a delta with the minimum-of-one clamp.
func (e *Engine) UpdateQuantity(ctx context.Context, slug, sessionID, productID string, delta int) (*cart.Cart, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return e.carts.UpdateQuantity(ctx, snapshot.Store.ID.String(), sessionID, productID, delta)
}

// ClearCart empties the session cart.
func (e *Engine) ClearCart(ctx context.Context, slug, sessionID string) error {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return e.carts.Clear(ctx, snapshot.Store.ID.String(), sessionID)
}

// Unlock runs the gate's verification chain for this session.
func (e *Engine) Unlock(ctx context.Context, slug, sessionID, secret string) (gate.Result, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return gate.Result{}, err
	}

	started := time.Now()
	result, err := e.gate.Unlock(ctx, snapshot.Store, sessionID, secret)
	e.observe(opUnlock, started, err == nil && result.Granted)
	return result, err
}

// Lock re-locks the session explicitly.
func (e *Engine) Lock(ctx context.Context, slug, sessionID string) error {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return e.gate.Lock(ctx, snapshot.Store, sessionID)
}

// Finalize submits the order under the per-session submitting guard, so a
// double-click cannot create two orders.
func (e *Engine) Finalize(ctx context.Context, slug, sessionID string, customer types.CustomerInfo) (*checkout.OrderSuccess, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	storeID := snapshot.Store.ID.String()

	release, err := e.acquire(ctx, opFinalize, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	success, err := e.checkout.Finalize(ctx, snapshot.Store, sessionID, customer)
	e.observe(opFinalize, started, err == nil)
	return success, err
}

// SaveCart snapshots the cart under a share code, guarded per session.
func (e *Engine) SaveCart(ctx context.Context, slug, sessionID string) (string, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	storeID := snapshot.Store.ID.String()

	release, err := e.acquire(ctx, opSaveCart, storeID, sessionID)
	if err != nil {
		return "", err
	}
	defer release()

	started := time.Now()
	code, err := e.savedcart.Save(ctx, snapshot.Store, sessionID)
	e.observe(opSaveCart, started, err == nil)
	return code, err
}

// LoadCart restores a saved cart by code, guarded per session. A miss is a
// negative result, not an error.
func (e *Engine) LoadCart(ctx context.Context, slug, sessionID, code string) (*cart.Cart, bool, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return nil, false, err
	}
	storeID := snapshot.Store.ID.String()

	release, err := e.acquire(ctx, opLoadCart, storeID, sessionID)
	if err != nil {
		return nil, false, err
	}
	defer release()

	started := time.Now()
	loaded, hit, err := e.savedcart.Load(ctx, snapshot.Store, sessionID, code)
	e.observe(opLoadCart, started, err == nil)
	return loaded, hit, err
}

// MessageLink builds the messaging handoff for the pending confirmation.
func (e *Engine) MessageLink(ctx context.Context, slug, sessionID string) (string, error) {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	success, err := e.checkout.Success(ctx, snapshot.Store, sessionID)
	if err != nil {
		return "", err
	}
	if success == nil {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no order confirmation to share")
	}

	visible, err := e.pricesVisible(ctx, snapshot, sessionID)
	if err != nil {
		return "", err
	}
	return e.checkout.MessageLink(ctx, snapshot.Store, success, visible)
}

// DismissSuccess clears the pending confirmation.
func (e *Engine) DismissSuccess(ctx context.Context, slug, sessionID string) error {
	snapshot, err := e.catalog.SnapshotBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return e.checkout.Dismiss(ctx, snapshot.Store, sessionID)
}

// pricesVisible derives the session's price visibility: open stores always
// reveal; cost-gated stores reveal only after the gate unlocked.
func (e *Engine) pricesVisible(ctx context.Context, snapshot *catalog.Snapshot, sessionID string) (bool, error) {
	if !snapshot.Policy.StartsLocked() {
		return true, nil
	}
	return e.gate.Unlocked(ctx, snapshot.Store, sessionID)
}

// acquire takes the single-flight guard for one operation on one session.
// Guards are per operation only: a save and a finalize may still race, which
// mirrors the accepted limitation of the busy-flag model.
func (e *Engine) acquire(ctx context.Context, operation, storeID, sessionID string) (func(), error) {
	key := e.guards.InFlightKey(operation, storeID, sessionID)
	locked, err := e.guards.SetNX(ctx, key, "1", e.inFlightTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring operation guard")
	}
	if !locked {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, strings.ReplaceAll(operation, "_", " ")+" is already in progress")
	}
	return func() {
		if err := e.guards.Del(context.WithoutCancel(ctx), key); err != nil && e.logg != nil {
			e.logg.Warn(ctx, "releasing operation guard failed: "+err.Error())
		}
	}, nil
}

func (e *Engine) busyStates(ctx context.Context, storeID, sessionID string) BusyStates {
	busy := BusyStates{}
	if exists, err := e.guards.Exists(ctx, e.guards.InFlightKey(opFinalize, storeID, sessionID)); err == nil {
		busy.Submitting = exists
	}
	if exists, err := e.guards.Exists(ctx, e.guards.InFlightKey(opSaveCart, storeID, sessionID)); err == nil {
		busy.Saving = exists
	}
	if exists, err := e.guards.Exists(ctx, e.guards.InFlightKey(opLoadCart, storeID, sessionID)); err == nil {
		busy.LoadingCart = exists
	}
	return busy
}

func (e *Engine) observe(operation string, started time.Time, success bool) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveDuration(operation, time.Since(started))
	if success {
		e.metrics.IncSuccess(operation)
	} else {
		e.metrics.IncFailure(operation)
	}
}
