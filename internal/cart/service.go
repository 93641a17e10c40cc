package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	pkgredis "github.com/vitrinehub/vitrine-backend/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(storeID, sessionID string) string
}

// Service owns the per-session cart: merge-on-add, clamp-on-update and the
// explicit-removal rule.
type Service interface {
	Get(ctx context.Context, storeID, sessionID string) (*Cart, error)
	Add(ctx context.Context, storeID, sessionID string, line Line) (*Cart, error)
	Remove(ctx context.Context, storeID, sessionID, productID string) (*Cart, error)
	UpdateQuantity(ctx context.Context, storeID, sessionID, productID string, delta int) (*Cart, error)
	Replace(ctx context.Context, storeID, sessionID string, lines []Line) (*Cart, error)
	Clear(ctx context.Context, storeID, sessionID string) error
}

type service struct {
	kv  kvStore
	ttl time.Duration
}

// NewService builds the cart service over the tenant-scoped KV store.
func NewService(kv kvStore, ttl time.Duration) (Service, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	return &service{kv: kv, ttl: ttl}, nil
}

func (s *service) Get(ctx context.Context, storeID, sessionID string) (*Cart, error) {
	if err := validateSession(storeID, sessionID); err != nil {
		return nil, err
	}
	return s.load(ctx, storeID, sessionID)
}

// Add merges into an existing line or appends a new one; quantity is additive.
func (s *service) Add(ctx context.Context, storeID, sessionID string, line Line) (*Cart, error) {
	if err := validateSession(storeID, sessionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(line.ProductID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if line.Quantity < 1 {
		line.Quantity = 1
	}

	current, err := s.load(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}

	if i := current.lineIndex(line.ProductID); i >= 0 {
		current.Lines[i].Quantity += line.Quantity
	} else {
		current.Lines = append(current.Lines, line)
	}

	if err := s.persist(ctx, storeID, sessionID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Remove deletes the line entirely regardless of its quantity.
func (s *service) Remove(ctx context.Context, storeID, sessionID, productID string) (*Cart, error) {
	if err := validateSession(storeID, sessionID); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}

	i := current.lineIndex(productID)
	if i < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
	}
	current.Lines = append(current.Lines[:i], current.Lines[i+1:]...)

	if err := s.persist(ctx, storeID, sessionID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// UpdateQuantity applies a delta and clamps the result to a minimum of 1.
// Dropping a line is only possible through Remove.
func (s *service) UpdateQuantity(ctx context.Context, storeID, sessionID, productID string, delta int) (*Cart, error) {
	if err := validateSession(storeID, sessionID); err != nil {
		return nil, err
	}

	current, err := s.load(ctx, storeID, sessionID)
	if err != nil {
		return nil, err
	}

	i := current.lineIndex(productID)
	if i < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
	}
	if qty := current.Lines[i].Quantity + delta; qty < 1 {
		current.Lines[i].Quantity = 1
	} else {
		current.Lines[i].Quantity = qty
	}

	if err := s.persist(ctx, storeID, sessionID, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Replace swaps the entire cart for the provided lines. Used by saved-cart
// load, which replaces rather than merges.
func (s *service) Replace(ctx context.Context, storeID, sessionID string, lines []Line) (*Cart, error) {
	if err := validateSession(storeID, sessionID); err != nil {
		return nil, err
	}

	replacement := &Cart{}
	for _, line := range lines {
		if strings.TrimSpace(line.ProductID) == "" {
			continue
		}
		if line.Quantity < 1 {
			line.Quantity = 1
		}
		if i := replacement.lineIndex(line.ProductID); i >= 0 {
			replacement.Lines[i].Quantity += line.Quantity
			continue
		}
		replacement.Lines = append(replacement.Lines, line)
	}

	if err := s.persist(ctx, storeID, sessionID, replacement); err != nil {
		return nil, err
	}
	return replacement, nil
}

func (s *service) Clear(ctx context.Context, storeID, sessionID string) error {
	if err := validateSession(storeID, sessionID); err != nil {
		return err
	}
	if err := s.kv.Del(ctx, s.kv.CartKey(storeID, sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, storeID, sessionID string) (*Cart, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(storeID, sessionID))
	if errors.Is(err, pkgredis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}

	var current Cart
	if err := json.Unmarshal([]byte(raw), &current); err != nil {
		// Corrupt payloads reset the cart rather than bricking the session.
		return &Cart{}, nil
	}
	return &current, nil
}

func (s *service) persist(ctx context.Context, storeID, sessionID string, current *Cart) error {
	raw, err := json.Marshal(current)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(storeID, sessionID), string(raw), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting cart")
	}
	return nil
}

func validateSession(storeID, sessionID string) error {
	if strings.TrimSpace(storeID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return nil
}
