package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vitrinehub/vitrine-backend/internal/cart"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/orderhub"
	"github.com/vitrinehub/vitrine-backend/pkg/receipts"
	pkgredis "github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// OrderSuccess is the confirmation surfaced after a successful finalization.
// It lives until the shopper dismisses it or starts a new checkout.
type OrderSuccess struct {
	OrderID    string             `json:"order_id"`
	DisplayID  string             `json:"display_id"`
	Customer   types.CustomerInfo `json:"customer"`
	Lines      []cart.Line        `json:"lines"`
	Total      decimal.Decimal    `json:"total"`
	ReceiptURL string             `json:"receipt_url,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	OrderSuccessKey(storeID, sessionID string) string
}

type cartAccess interface {
	Get(ctx context.Context, storeID, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, storeID, sessionID string) error
}

type orderCreator interface {
	CreateOrder(ctx context.Context, req orderhub.CreateOrderRequest) (*orderhub.CreateOrderResponse, error)
	RepresentativeContact(ctx context.Context, userID string) (string, error)
}

// ReceiptUploader is the object-store surface used for rendered receipts.
// A nil uploader disables receipts without blocking orders.
type ReceiptUploader interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error)
}

type customerRecorder interface {
	Remember(ctx context.Context, storeID, sessionID string, customer types.CustomerInfo) error
}

type permissionResolver interface {
	Allowed(store *models.Store, feature enums.Feature) bool
}

// Service orchestrates order finalization: preconditions, remote creation,
// best-effort receipt, recognition cache and cart teardown.
type Service interface {
	Finalize(ctx context.Context, store *models.Store, sessionID string, customer types.CustomerInfo) (*OrderSuccess, error)
	Success(ctx context.Context, store *models.Store, sessionID string) (*OrderSuccess, error)
	Dismiss(ctx context.Context, store *models.Store, sessionID string) error
	MessageLink(ctx context.Context, store *models.Store, success *OrderSuccess, pricesVisible bool) (string, error)
}

type service struct {
	kv            kvStore
	carts         cartAccess
	orders        orderCreator
	receipts      ReceiptUploader
	customers     customerRecorder
	permissions   permissionResolver
	receiptPrefix string
	successTTL    time.Duration
	logg          *logger.Logger
}

// NewService wires the finalizer. The receipt uploader may be nil; receipts
// are then skipped entirely and orders still complete.
func NewService(
	kv kvStore,
	carts cartAccess,
	orders orderCreator,
	uploader ReceiptUploader,
	customers customerRecorder,
	permissions permissionResolver,
	receiptPrefix string,
	successTTL time.Duration,
	logg *logger.Logger,
) (Service, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer recorder required")
	}
	if permissions == nil {
		return nil, fmt.Errorf("permission resolver required")
	}
	return &service{
		kv:            kv,
		carts:         carts,
		orders:        orders,
		receipts:      uploader,
		customers:     customers,
		permissions:   permissions,
		receiptPrefix: receiptPrefix,
		successTTL:    successTTL,
		logg:          logg,
	}, nil
}

// Finalize runs the checkout. The remote order creation is the hard gate: any
// failure there aborts with the cart untouched. Everything after it is
// best-effort and never turns a created order into a failure.
func (s *service) Finalize(ctx context.Context, store *models.Store, sessionID string, customer types.CustomerInfo) (*OrderSuccess, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if !customer.Complete() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name and phone are required")
	}
	if !s.permissions.Allowed(store, enums.FeatureFinalizeOrder) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "finalizing orders is not available on this plan")
	}

	storeID := store.ID.String()
	current, err := s.carts.Get(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}
	if current.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items := make([]orderhub.OrderItem, 0, len(current.Lines))
	for _, line := range current.Lines {
		items = append(items, orderhub.OrderItem{
			ID:        line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Reference: line.Reference,
		})
	}

	created, err := s.orders.CreateOrder(ctx, orderhub.CreateOrderRequest{
		StoreOwnerID: store.OwnerID.String(),
		Customer:     customer,
		Items:        items,
	})
	if err != nil {
		return nil, err
	}

	success := &OrderSuccess{
		OrderID:   created.ID,
		DisplayID: created.DisplayID,
		Customer:  customer,
		Lines:     current.Lines,
		Total:     current.Total(),
		CreatedAt: time.Now().UTC(),
	}
	success.ReceiptURL = s.uploadReceipt(ctx, store, success)

	if err := s.customers.Remember(ctx, storeID, sessionID, customer); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "remembering customer failed: "+err.Error())
	}
	if err := s.carts.Clear(ctx, storeID, sessionID); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "clearing cart after order failed: "+err.Error())
	}
	s.persistSuccess(ctx, storeID, sessionID, success)

	return success, nil
}

// uploadReceipt renders and stores the confirmation document. Failures are
// logged and degrade to an absent receipt link.
func (s *service) uploadReceipt(ctx context.Context, store *models.Store, success *OrderSuccess) string {
	if s.receipts == nil {
		return ""
	}

	items := make([]receipts.LineItem, 0, len(success.Lines))
	for _, line := range success.Lines {
		items = append(items, receipts.LineItem{
			Name:      line.Name,
			Reference: line.Reference,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			LineTotal: line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	data := receipts.Data{
		OrderDisplayID: success.DisplayID,
		StoreName:      store.Name,
		Customer:       success.Customer,
		Items:          items,
		Total:          success.Total,
		ShowPrices:     true,
		IssuedAt:       success.CreatedAt,
	}
	if store.LogoURL != nil {
		data.StoreLogoURL = *store.LogoURL
	}
	data.StorePhone = store.MessagingPhone()

	rendered, err := receipts.Render(data)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "rendering receipt failed: "+err.Error())
		}
		return ""
	}

	url, err := s.receipts.Upload(ctx, receipts.ObjectName(s.receiptPrefix, success.DisplayID), receipts.ContentType, rendered)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "uploading receipt failed: "+err.Error())
		}
		return ""
	}
	return url
}

// Success returns the pending confirmation for the session, nil when none.
func (s *service) Success(ctx context.Context, store *models.Store, sessionID string) (*OrderSuccess, error) {
	if store == nil || strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}
	raw, err := s.kv.Get(ctx, s.kv.OrderSuccessKey(store.ID.String(), sessionID))
	if errors.Is(err, pkgredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading order confirmation")
	}

	var success OrderSuccess
	if err := json.Unmarshal([]byte(raw), &success); err != nil {
		return nil, nil
	}
	return &success, nil
}

// Dismiss clears the pending confirmation.
func (s *service) Dismiss(ctx context.Context, store *models.Store, sessionID string) error {
	if store == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if err := s.kv.Del(ctx, s.kv.OrderSuccessKey(store.ID.String(), sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dismissing order confirmation")
	}
	return nil
}

func (s *service) persistSuccess(ctx context.Context, storeID, sessionID string, success *OrderSuccess) {
	raw, err := json.Marshal(success)
	if err != nil {
		return
	}
	if err := s.kv.Set(ctx, s.kv.OrderSuccessKey(storeID, sessionID), string(raw), s.successTTL); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "persisting order confirmation failed: "+err.Error())
	}
}
