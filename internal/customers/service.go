package customers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	pkgredis "github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CustomerKey(storeID, sessionID string) string
}

// Service caches the last checkout customer per tenant session so returning
// shoppers skip the contact form. The record is a convenience, never an
// authenticated identity.
type Service interface {
	Remember(ctx context.Context, storeID, sessionID string, customer types.CustomerInfo) error
	Recognize(ctx context.Context, storeID, sessionID string) (*types.CustomerInfo, error)
	Forget(ctx context.Context, storeID, sessionID string) error
}

type service struct {
	kv  kvStore
	ttl time.Duration
}

// NewService builds the recognition cache over the tenant-scoped KV store.
func NewService(kv kvStore, ttl time.Duration) (Service, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	return &service{kv: kv, ttl: ttl}, nil
}

func (s *service) Remember(ctx context.Context, storeID, sessionID string, customer types.CustomerInfo) error {
	if strings.TrimSpace(storeID) == "" || strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id and session id are required")
	}
	if !customer.Complete() {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name and phone are required")
	}

	raw, err := json.Marshal(customer)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding customer")
	}
	if err := s.kv.Set(ctx, s.kv.CustomerKey(storeID, sessionID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting customer")
	}
	return nil
}

// Recognize returns nil without error on a cache miss.
func (s *service) Recognize(ctx context.Context, storeID, sessionID string) (*types.CustomerInfo, error) {
	if strings.TrimSpace(storeID) == "" || strings.TrimSpace(sessionID) == "" {
		return nil, nil
	}

	raw, err := s.kv.Get(ctx, s.kv.CustomerKey(storeID, sessionID))
	if errors.Is(err, pkgredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading customer cache")
	}

	var customer types.CustomerInfo
	if err := json.Unmarshal([]byte(raw), &customer); err != nil {
		return nil, nil
	}
	return &customer, nil
}

func (s *service) Forget(ctx context.Context, storeID, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.CustomerKey(storeID, sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "forgetting customer")
	}
	return nil
}
