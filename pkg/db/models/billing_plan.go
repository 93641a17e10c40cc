package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	"github.com/vitrinehub/vitrine-backend/pkg/types"
)

// BillingPlan captures the subscription tier metadata and its feature matrix.
type BillingPlan struct {
	ID           string             `gorm:"column:id;primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	Status       enums.PlanStatus   `gorm:"column:status;not null;default:'active'"`
	IsDefault    bool               `gorm:"column:is_default;not null;default:false"`
	TrialDays    int                `gorm:"column:trial_days;not null;default:0"`
	PriceAmount  decimal.Decimal    `gorm:"column:price_amount;type:numeric(12,2);not null"`
	CurrencyCode string             `gorm:"column:currency_code;not null;default:'BRL'"`
	Tags         pq.StringArray     `gorm:"column:tags;type:text[];default:ARRAY[]::text[]"`
	Features     types.FeatureMatrix `gorm:"column:features;type:jsonb"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
