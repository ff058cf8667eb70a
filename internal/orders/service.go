package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/outbox"
	"github.com/karavanrugs/karavan-backend/pkg/pagination"
	"github.com/karavanrugs/karavan-backend/pkg/razorpay"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// gateway is the payment-provider surface the lifecycle needs.
type gateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderCreateParams) (*razorpay.GatewayOrder, error)
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature string) bool
	KeyID() string
	Currency() string
}

// ListResult is one page of orders plus the cursor for the next page.
type ListResult struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Service drives the order lifecycle: checkout, payment session, payment
// verification, delivery. Paid and delivered are independent flags.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	BeginPayment(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*PaymentSession, error)
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Order, error)
	MarkDelivered(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error)
	Get(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	gateway gateway
	now     func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, gw gateway) (Service, error) {
	if repo == nil {
		return nil, errors.New("orders: repository is required")
	}
	if tx == nil {
		return nil, errors.New("orders: tx runner is required")
	}
	if outboxSvc == nil {
		return nil, errors.New("orders: outbox publisher is required")
	}
	if gw == nil {
		return nil, errors.New("orders: payment gateway is required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outboxSvc,
		gateway: gw,
		now:     time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if !input.Actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}
	if strings.TrimSpace(input.ShippingAddress.Line1) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address line1 is required")
	}
	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodRazorpay
	}
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", input.PaymentMethod))
	}
	if input.TaxPrice.IsNegative() || input.ShippingPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax and shipping must not be negative")
	}

	itemsPrice := decimal.Zero
	items := make([]models.OrderLineItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		if err := validateLine(line); err != nil {
			return nil, err
		}
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty)))
		itemsPrice = itemsPrice.Add(lineTotal)
		items = append(items, models.OrderLineItem{
			ID:        uuid.New(),
			ProductID: line.ProductID,
			Name:      line.Name,
			SizeLabel: line.SizeLabel,
			Color:     line.Color,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			LineTotal: lineTotal,
		})
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          input.Actor.UserID,
		AdminID:         input.Actor.AdminID,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   method,
		Currency:        enums.CurrencyINR,
		ItemsPrice:      itemsPrice,
		TaxPrice:        input.TaxPrice,
		ShippingPrice:   input.ShippingPrice,
		TotalPrice:      itemsPrice.Add(input.TaxPrice).Add(input.ShippingPrice),
		Items:           items,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, order); err != nil {
			return err
		}
		// Stock is claimed inside the same tx: any line short on stock
		// rolls back the order and every earlier decrement.
		for _, line := range input.Lines {
			if line.ProductID == nil {
				continue
			}
			rows, err := repo.DecrementStock(ctx, *line.ProductID, line.SizeLabel, line.Qty)
			if err != nil {
				return err
			}
			if rows == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("insufficient stock for %s (%s)", line.Name, line.SizeLabel))
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: CreatedEvent{
				OrderID:    order.ID.String(),
				ItemsPrice: order.ItemsPrice.StringFixed(2),
				TotalPrice: order.TotalPrice.StringFixed(2),
				LineCount:  len(order.Items),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) BeginPayment(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*PaymentSession, error) {
	order, err := s.authorizedOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order is already paid")
	}
	if order.PaymentMethod == enums.PaymentMethodCOD {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cash on delivery orders have no payment session")
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, razorpay.OrderCreateParams{
		Amount:   order.TotalPrice,
		Currency: order.Currency.String(),
		Receipt:  order.ID.String(),
		Notes:    map[string]any{"order_id": order.ID.String()},
	})
	if err != nil {
		return nil, err
	}
	// Re-begin overwrites the previous session; the abandoned gateway order
	// simply expires unused.
	if err := s.repo.SetGatewaySession(ctx, order.ID, gatewayOrder.ID); err != nil {
		return nil, err
	}

	return &PaymentSession{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrder.ID,
		AmountPaise:    gatewayOrder.AmountPaise,
		Currency:       gatewayOrder.Currency,
		KeyID:          s.gateway.KeyID(),
	}, nil
}

func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Order, error) {
	if input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id, payment id, and signature are required")
	}
	if !s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment signature mismatch")
	}

	order, err := s.repo.FindByGatewayOrderID(ctx, input.GatewayOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}

	paidAt := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).MarkPaid(ctx, order.ID, input.GatewayPaymentID, paidAt)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Already paid: replayed callback, nothing to record.
			return nil
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			Data: PaidEvent{
				OrderID:   order.ID.String(),
				PaymentID: input.GatewayPaymentID,
				PaidAt:    paidAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, order.ID)
}

func (s *service) MarkDelivered(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}

	deliveredAt := s.now().UTC()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).MarkDelivered(ctx, orderID, deliveredAt)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         actorRef(actor),
			Data: DeliveredEvent{
				OrderID:     orderID.String(),
				DeliveredAt: deliveredAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, orderID)
}

func (s *service) Get(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error) {
	return s.authorizedOrder(ctx, actor, orderID)
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if !input.Actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	var rows []models.Order
	if input.Actor.IsAdmin() {
		rows, err = s.repo.List(ctx, pagination.LimitWithBuffer(input.Pagination.Limit), cursor)
	} else {
		rows, err = s.repo.ListByUser(ctx, *input.Actor.UserID, pagination.LimitWithBuffer(input.Pagination.Limit), cursor)
	}
	if err != nil {
		return nil, err
	}

	result := &ListResult{Orders: rows}
	if len(rows) > pageSize {
		result.Orders = rows[:pageSize]
		last := result.Orders[pageSize-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// authorizedOrder loads an order and enforces ownership: admins see every
// order, users only their own.
func (s *service) authorizedOrder(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, err
	}
	if actor.IsAdmin() {
		return order, nil
	}
	if actor.UserID == nil || order.UserID == nil || *order.UserID != *actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another account")
	}
	return order, nil
}

func validateLine(line LineInput) error {
	if strings.TrimSpace(line.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "line name is required")
	}
	if !line.SizeLabel.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown size label %q", line.SizeLabel))
	}
	if line.Qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "line qty must be at least 1")
	}
	if line.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "line unit price must not be negative")
	}
	return nil
}

func actorRef(actor types.Actor) *outbox.ActorRef {
	if !actor.Authenticated() {
		return nil
	}
	return &outbox.ActorRef{
		UserID:  actor.UserID,
		AdminID: actor.AdminID,
		Role:    string(actor.Role),
	}
}
