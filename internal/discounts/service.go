package discounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/outbox"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

var oneHundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput captures an admin's new global trader discount.
type CreateInput struct {
	Actor   types.Actor
	Percent decimal.Decimal
}

// PolicyCreatedEvent is emitted when a new discount policy becomes active.
type PolicyCreatedEvent struct {
	PolicyID string `json:"policy_id"`
	Percent  string `json:"percent"`
}

// Service manages the insert-only discount policy history.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.DiscountPolicy, error)
	Latest(ctx context.Context) (*models.DiscountPolicy, error)
	List(ctx context.Context, limit int) ([]models.DiscountPolicy, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds a discounts service with the required dependencies.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discounts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.DiscountPolicy, error) {
	if !input.Actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !input.Actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	if input.Percent.IsNegative() || input.Percent.GreaterThan(oneHundred) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent must be between 0 and 100")
	}

	policy := &models.DiscountPolicy{
		Percent:   input.Percent,
		CreatedBy: *input.Actor.AdminID,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Insert(ctx, policy)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert discount policy")
		}
		policy = created

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDiscountCreated,
			AggregateType: enums.AggregateDiscount,
			AggregateID:   policy.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: PolicyCreatedEvent{
				PolicyID: policy.ID.String(),
				Percent:  policy.Percent.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return policy, nil
}

func (s *service) Latest(ctx context.Context) (*models.DiscountPolicy, error) {
	policy, err := s.repo.Latest(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no discount policy configured")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount policy")
	}
	return policy, nil
}

func (s *service) List(ctx context.Context, limit int) ([]models.DiscountPolicy, error) {
	rows, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list discount policies")
	}
	return rows, nil
}

func actorRef(actor types.Actor) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID:  actor.UserID,
		AdminID: actor.AdminID,
		Role:    string(actor.Role),
	}
}
