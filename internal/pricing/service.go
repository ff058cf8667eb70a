package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// Quote is the resolved price for one unit of a product variant.
type Quote struct {
	UnitPrice              decimal.Decimal
	AppliedDiscountPercent decimal.Decimal
}

type discountSource interface {
	Latest(ctx context.Context) (*models.DiscountPolicy, error)
}

// Service resolves unit prices for product variants. Trader accounts get the
// current global discount applied; everyone else pays list price.
type Service interface {
	ResolveUnitPrice(ctx context.Context, product *models.Product, sizeLabel enums.SizeLabel, qty int, role enums.ActorRole) (*Quote, error)
}

type service struct {
	discounts discountSource
}

// NewService builds a pricing service with the required dependencies.
func NewService(discounts discountSource) (Service, error) {
	if discounts == nil {
		return nil, fmt.Errorf("discount source required")
	}
	return &service{discounts: discounts}, nil
}

func (s *service) ResolveUnitPrice(ctx context.Context, product *models.Product, sizeLabel enums.SizeLabel, qty int, role enums.ActorRole) (*Quote, error) {
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product required")
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}
	if !sizeLabel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product variant").
			WithDetails(map[string]any{"size_label": string(sizeLabel)})
	}

	size := product.SizeByLabel(sizeLabel)
	if size == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product variant").
			WithDetails(map[string]any{"size_label": string(sizeLabel)})
	}
	if size.Stock < qty {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{"available": size.Stock, "requested": qty})
	}

	discount := s.discountFor(ctx, role)
	unit := size.Price
	if !discount.IsZero() {
		factor := one.Sub(discount.Div(oneHundred))
		unit = size.Price.Mul(factor).Round(2)
	}

	return &Quote{
		UnitPrice:              unit,
		AppliedDiscountPercent: discount,
	}, nil
}

// discountFor is best-effort: a missing or malformed policy prices at list.
// Traders never see an error from the discount lookup.
func (s *service) discountFor(ctx context.Context, role enums.ActorRole) decimal.Decimal {
	if role != enums.ActorRoleTrader {
		return decimal.Zero
	}
	policy, err := s.discounts.Latest(ctx)
	if err != nil || policy == nil {
		return decimal.Zero
	}
	if policy.Percent.IsNegative() || policy.Percent.GreaterThan(oneHundred) {
		return decimal.Zero
	}
	return policy.Percent
}
