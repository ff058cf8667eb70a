package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/pkg/enums"
)

// Cart is a user's single active cart.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is one resolved line. UnitPrice is the snapshot taken when the line
// was added or last updated; reads never recompute it.
type CartItem struct {
	ID                     uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID                 uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:ux_cart_items_variant"`
	ProductID              uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_cart_items_variant"`
	ProductTitle           string          `gorm:"column:product_title;not null"`
	SizeLabel              enums.SizeLabel `gorm:"column:size_label;type:text;not null;uniqueIndex:ux_cart_items_variant"`
	Color                  string          `gorm:"column:color;not null;uniqueIndex:ux_cart_items_variant"`
	Qty                    int             `gorm:"column:qty;not null"`
	UnitPrice              decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	AppliedDiscountPercent decimal.Decimal `gorm:"column:applied_discount_percent;type:numeric(5,2);not null;default:0"`
	CreatedAt              time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// LineTotal returns qty × unit price.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Qty)))
}
