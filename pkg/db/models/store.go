package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// Store is the canonical tenant record: branding, contact channels, the
// price-gate credentials and the plan assignment.
type Store struct {
	ID      uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID uuid.UUID `gorm:"column:owner_id;type:uuid;not null"`
	Slug    string    `gorm:"column:slug;not null;uniqueIndex"`
	Name    string    `gorm:"column:name;not null"`

	LogoURL       *string `gorm:"column:logo_url"`
	ContactPhone  *string `gorm:"column:contact_phone"`
	ContactEmail  *string `gorm:"column:contact_email"`
	WhatsAppPhone *string `gorm:"column:whatsapp_phone"`

	// PasswordHash holds the argon2id digest of the configured gate password.
	// PasswordPlain is the legacy plaintext column kept for stores that never
	// re-saved their settings after hashing shipped. PasswordRemote marks
	// tenants whose password lives only in the order hub and must be verified
	// there.
	PasswordHash   *string `gorm:"column:password_hash"`
	PasswordPlain  *string `gorm:"column:password_plain"`
	PasswordRemote bool    `gorm:"column:password_remote;not null;default:false"`

	PriceMode          enums.PriceMode `gorm:"column:price_mode;not null;default:'open'"`
	InstallmentMax     int             `gorm:"column:installment_max;not null;default:0"`
	InstallmentMinUnit int             `gorm:"column:installment_min_unit;not null;default:0"`

	PlanID  *string `gorm:"column:plan_id"`
	Plan    *BillingPlan
	IsTrial bool `gorm:"column:is_trial;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// HasGatePassword reports whether any local or server-side secret is set.
func (s Store) HasGatePassword() bool {
	return (s.PasswordHash != nil && *s.PasswordHash != "") ||
		(s.PasswordPlain != nil && *s.PasswordPlain != "") ||
		s.PasswordRemote
}

// MessagingPhone resolves the outbound contact, preferring the WhatsApp
// override over the generic store phone.
func (s Store) MessagingPhone() string {
	if s.WhatsAppPhone != nil && *s.WhatsAppPhone != "" {
		return *s.WhatsAppPhone
	}
	if s.ContactPhone != nil {
		return *s.ContactPhone
	}
	return ""
}
