package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is one catalog listing. The engine treats it as read-only input;
// only the admin surface mutates products.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID       uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index"`
	Reference     string           `gorm:"column:reference;not null"`
	Name          string           `gorm:"column:name;not null"`
	Brand         *string          `gorm:"column:brand"`
	Category      *string          `gorm:"column:category"`
	Description   *string          `gorm:"column:description"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	SalePrice     *decimal.Decimal `gorm:"column:sale_price;type:numeric(12,2)"`
	OriginalPrice *decimal.Decimal `gorm:"column:original_price;type:numeric(12,2)"`
	CostPrice     *decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2)"`
	StockQty      int              `gorm:"column:stock_qty;not null;default:0"`
	IsLaunch      bool             `gorm:"column:is_launch;not null;default:false"`
	IsBestseller  bool             `gorm:"column:is_bestseller;not null;default:false"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	ImageURLs     pq.StringArray   `gorm:"column:image_urls;type:text[];default:ARRAY[]::text[]"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// OutOfStock reports whether the listing can still be added to a cart.
func (p Product) OutOfStock() bool {
	return p.StockQty <= 0
}

// EffectivePrice is the price a shopper pays: the sale price when present,
// the list price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil && p.SalePrice.IsPositive() {
		return *p.SalePrice
	}
	return p.Price
}
