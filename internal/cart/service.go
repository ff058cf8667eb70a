package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/internal/pricing"
	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

type productSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// AddItemInput captures an add-to-cart or line update request. The resolved
// unit price is snapshotted on the line; later catalog changes do not touch it.
type AddItemInput struct {
	Actor     types.Actor
	ProductID uuid.UUID
	SizeLabel enums.SizeLabel
	Color     string
	Qty       int
}

// View is the cart plus derived totals.
type View struct {
	Cart       *models.Cart    `json:"cart"`
	ItemsPrice decimal.Decimal `json:"items_price"`
	TotalItems int             `json:"total_items"`
}

// Service manages the single active cart per user.
type Service interface {
	Get(ctx context.Context, actor types.Actor) (*View, error)
	AddItem(ctx context.Context, input AddItemInput) (*View, error)
	RemoveItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, actor types.Actor) error
}

type service struct {
	repo     Repository
	products productSource
	pricing  pricing.Service
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, products productSource, pricer pricing.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product source required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	return &service{repo: repo, products: products, pricing: pricer}, nil
}

func (s *service) Get(ctx context.Context, actor types.Actor) (*View, error) {
	userID, err := requireUser(actor)
	if err != nil {
		return nil, err
	}
	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return buildView(cart), nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*View, error) {
	userID, err := requireUser(input.Actor)
	if err != nil {
		return nil, err
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
	}
	color := strings.ToLower(strings.TrimSpace(input.Color))
	if color == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "color required")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if !hasColor(product, color) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product variant").
			WithDetails(map[string]any{"color": color})
	}

	quote, err := s.pricing.ResolveUnitPrice(ctx, product, input.SizeLabel, input.Qty, input.Actor.Role)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item := &models.CartItem{
		CartID:                 cart.ID,
		ProductID:              product.ID,
		ProductTitle:           product.Title,
		SizeLabel:              input.SizeLabel,
		Color:                  color,
		Qty:                    input.Qty,
		UnitPrice:              quote.UnitPrice,
		AppliedDiscountPercent: quote.AppliedDiscountPercent,
	}
	if _, err := s.repo.UpsertItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}

	cart, err = s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return buildView(cart), nil
}

func (s *service) RemoveItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) (*View, error) {
	userID, err := requireUser(actor)
	if err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}

	cart, err := s.repo.FindOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.RemoveItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}

	cart, err = s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return buildView(cart), nil
}

func (s *service) Clear(ctx context.Context, actor types.Actor) error {
	userID, err := requireUser(actor)
	if err != nil {
		return err
	}
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.Clear(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func requireUser(actor types.Actor) (uuid.UUID, error) {
	if !actor.Authenticated() || actor.UserID == nil || *actor.UserID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	return *actor.UserID, nil
}

func hasColor(product *models.Product, color string) bool {
	for _, candidate := range product.Colors {
		if strings.EqualFold(candidate, color) {
			return true
		}
	}
	return false
}

func buildView(cart *models.Cart) *View {
	view := &View{Cart: cart, ItemsPrice: decimal.Zero}
	for _, item := range cart.Items {
		view.ItemsPrice = view.ItemsPrice.Add(item.LineTotal())
		view.TotalItems += item.Qty
	}
	return view
}
