package savedcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vitrinehub/vitrine-backend/internal/cart"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	pkgredis "github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/security"
)

const codeGenerationAttempts = 5

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	SavedCartKey(code string) string
}

type cartAccess interface {
	Get(ctx context.Context, storeID, sessionID string) (*cart.Cart, error)
	Replace(ctx context.Context, storeID, sessionID string, lines []cart.Line) (*cart.Cart, error)
}

type permissionResolver interface {
	Allowed(store *models.Store, feature enums.Feature) bool
}

// snapshot is the stored payload behind a share code.
type snapshot struct {
	StoreID string      `json:"store_id"`
	Lines   []cart.Line `json:"lines"`
	SavedAt time.Time   `json:"saved_at"`
}

// Service hands carts across sessions and devices through short typeable
// codes.
type Service interface {
	Save(ctx context.Context, store *models.Store, sessionID string) (string, error)
	Load(ctx context.Context, store *models.Store, sessionID, code string) (*cart.Cart, bool, error)
}

type service struct {
	kv          kvStore
	carts       cartAccess
	permissions permissionResolver
	codeLength  int
	ttl         time.Duration
}

// NewService builds the saved-cart codec.
func NewService(kv kvStore, carts cartAccess, permissions permissionResolver, codeLength int, ttl time.Duration) (Service, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if permissions == nil {
		return nil, fmt.Errorf("permission resolver required")
	}
	if codeLength <= 0 {
		codeLength = 6
	}
	return &service{
		kv:          kv,
		carts:       carts,
		permissions: permissions,
		codeLength:  codeLength,
		ttl:         ttl,
	}, nil
}

// Save snapshots the current cart under a fresh share code.
func (s *service) Save(ctx context.Context, store *models.Store, sessionID string) (string, error) {
	if store == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if !s.permissions.Allowed(store, enums.FeatureSaveCart) {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "saving carts is not available on this plan")
	}

	current, err := s.carts.Get(ctx, store.ID.String(), sessionID)
	if err != nil {
		return "", err
	}
	if current.Empty() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	raw, err := json.Marshal(snapshot{
		StoreID: store.ID.String(),
		Lines:   current.Lines,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding saved cart")
	}

	// Codes can collide; SetNX keeps the first writer and we retry with a
	// fresh code.
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, err := security.GenerateShareCode(s.codeLength)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating share code")
		}
		stored, err := s.kv.SetNX(ctx, s.kv.SavedCartKey(code), string(raw), s.ttl)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing saved cart")
		}
		if stored {
			return code, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a share code")
}

// Load looks a code up case-insensitively. A hit replaces the session cart
// with the stored lines; a miss is a negative result, not an error.
func (s *service) Load(ctx context.Context, store *models.Store, sessionID, code string) (*cart.Cart, bool, error) {
	if store == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "share code is required")
	}

	raw, err := s.kv.Get(ctx, s.kv.SavedCartKey(code))
	if errors.Is(err, pkgredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading saved cart")
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, false, nil
	}
	// A code minted for another tenant never leaks into this one.
	if snap.StoreID != store.ID.String() {
		return nil, false, nil
	}

	replaced, err := s.carts.Replace(ctx, store.ID.String(), sessionID, snap.Lines)
	if err != nil {
		return nil, false, err
	}
	return replaced, true, nil
}
