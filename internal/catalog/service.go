package catalog

import (
	"context"
	"fmt"

	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
)

// Snapshot is the immutable per-request view of one tenant's catalog: the
// store record, its active products and the normalized display policy.
type Snapshot struct {
	Store    *models.Store
	Products []models.Product
	Policy   DisplayPolicy

	byID map[string]*models.Product
}

// NewSnapshot assembles a snapshot and indexes its products by id.
func NewSnapshot(store *models.Store, products []models.Product) *Snapshot {
	snapshot := &Snapshot{
		Store:    store,
		Products: products,
		Policy:   PolicyFromStore(store),
		byID:     make(map[string]*models.Product, len(products)),
	}
	for i := range products {
		snapshot.byID[products[i].ID.String()] = &products[i]
	}
	return snapshot
}

// ProductByID looks up a product in the snapshot by its string identifier.
func (s *Snapshot) ProductByID(id string) (*models.Product, bool) {
	if s == nil {
		return nil, false
	}
	product, ok := s.byID[id]
	return product, ok
}

// Service assembles catalog snapshots.
type Service interface {
	SnapshotBySlug(ctx context.Context, slug string) (*Snapshot, error)
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SnapshotBySlug(ctx context.Context, slug string) (*Snapshot, error) {
	store, err := s.repo.GetStoreBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	products, err := s.repo.ListActiveProducts(ctx, store.ID)
	if err != nil {
		return nil, err
	}

	return NewSnapshot(store, products), nil
}
