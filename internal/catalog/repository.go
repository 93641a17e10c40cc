package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
	"github.com/vitrinehub/vitrine-backend/pkg/db/models"
)

// Repository exposes the catalog read paths. The engine never writes to the
// catalog; only the admin surface does.
type Repository interface {
	GetStoreBySlug(ctx context.Context, slug string) (*models.Store, error)
	GetStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	ListActiveProducts(ctx context.Context, storeID uuid.UUID) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the gorm-backed catalog repository.
func NewRepository(db *gorm.DB) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &repository{db: db}, nil
}

func (r *repository) GetStoreBySlug(ctx context.Context, slug string) (*models.Store, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store slug is required")
	}

	var store models.Store
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("slug = ?", slug).
		First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading store by slug")
	}
	return &store, nil
}

func (r *repository) GetStoreByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	var store models.Store
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("id = ?", id).
		First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading store by id")
	}
	return &store, nil
}

func (r *repository) ListActiveProducts(ctx context.Context, storeID uuid.UUID) ([]models.Product, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}

	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND is_active = ?", storeID, true).
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return products, nil
}
