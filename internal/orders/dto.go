package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/pkg/enums"
	"github.com/karavanrugs/karavan-backend/pkg/pagination"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

// LineInput is one checkout line. Prices arrive already resolved (the cart
// snapshot is authoritative); checkout never re-prices.
type LineInput struct {
	ProductID *uuid.UUID      `json:"product_id"`
	Name      string          `json:"name"`
	SizeLabel enums.SizeLabel `json:"size_label"`
	Color     string          `json:"color"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateInput captures a checkout request.
type CreateInput struct {
	Actor           types.Actor
	Lines           []LineInput
	ShippingAddress types.Address
	PaymentMethod   enums.PaymentMethod
	TaxPrice        decimal.Decimal
	ShippingPrice   decimal.Decimal
}

// PaymentSession is what the storefront needs to open the gateway checkout.
type PaymentSession struct {
	OrderID        uuid.UUID `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	AmountPaise    int64     `json:"amount_paise"`
	Currency       string    `json:"currency"`
	KeyID          string    `json:"key_id"`
}

// VerifyPaymentInput carries the gateway callback fields the client posts back
// after a successful checkout.
type VerifyPaymentInput struct {
	Actor            types.Actor
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

// ListInput selects a page of orders. Non-admin actors only ever see their own.
type ListInput struct {
	Actor      types.Actor
	Pagination pagination.Params
}

// CreatedEvent is the order.created outbox payload.
type CreatedEvent struct {
	OrderID    string `json:"order_id"`
	ItemsPrice string `json:"items_price"`
	TotalPrice string `json:"total_price"`
	LineCount  int    `json:"line_count"`
}

// PaidEvent is the order.paid outbox payload.
type PaidEvent struct {
	OrderID   string    `json:"order_id"`
	PaymentID string    `json:"payment_id"`
	PaidAt    time.Time `json:"paid_at"`
}

// DeliveredEvent is the order.delivered outbox payload.
type DeliveredEvent struct {
	OrderID     string    `json:"order_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}
