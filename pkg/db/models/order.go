package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/pkg/enums"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

// Order is the checkout aggregate. Line items and totals are immutable once
// is_paid flips; only the paid/delivered flag pairs change after that.
// The two flags are independent: delivery has no paid precondition (cash on
// delivery flows mark delivery first).
type Order struct {
	ID     uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID *uuid.UUID `gorm:"column:user_id;type:uuid"`
	// AdminID attributes back-office orders (phone orders keyed in by staff).
	AdminID *uuid.UUID `gorm:"column:admin_id;type:uuid"`

	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'razorpay'"`
	Currency        enums.Currency      `gorm:"column:currency;type:text;not null;default:'INR'"`

	ItemsPrice    decimal.Decimal `gorm:"column:items_price;type:numeric(12,2);not null"`
	TaxPrice      decimal.Decimal `gorm:"column:tax_price;type:numeric(12,2);not null;default:0"`
	ShippingPrice decimal.Decimal `gorm:"column:shipping_price;type:numeric(12,2);not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`

	GatewayOrderID *string              `gorm:"column:gateway_order_id;uniqueIndex"`
	PaymentID      *string              `gorm:"column:payment_id"`
	PaymentStatus  *enums.PaymentStatus `gorm:"column:payment_status;type:text"`

	IsPaid      bool       `gorm:"column:is_paid;not null;default:false"`
	PaidAt      *time.Time `gorm:"column:paid_at"`
	IsDelivered bool       `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`

	Items     []OrderLineItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLineItem is a point-in-time snapshot of the purchased variant, copied
// from the cart at checkout; it never references live product pricing.
type OrderLineItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Name      string          `gorm:"column:name;not null"`
	SizeLabel enums.SizeLabel `gorm:"column:size_label;type:text;not null"`
	Color     string          `gorm:"column:color;not null"`
	Qty       int             `gorm:"column:qty;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
