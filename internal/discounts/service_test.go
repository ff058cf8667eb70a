package discounts

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/outbox"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

type stubDiscountsRepo struct {
	inserted *models.DiscountPolicy
	latest   *models.DiscountPolicy
	rows     []models.DiscountPolicy
	err      error
}

func (s *stubDiscountsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubDiscountsRepo) Insert(ctx context.Context, policy *models.DiscountPolicy) (*models.DiscountPolicy, error) {
	if s.err != nil {
		return nil, s.err
	}
	if policy.ID == uuid.Nil {
		policy.ID = uuid.New()
	}
	s.inserted = policy
	return policy, nil
}

func (s *stubDiscountsRepo) Latest(ctx context.Context) (*models.DiscountPolicy, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.latest, nil
}

func (s *stubDiscountsRepo) List(ctx context.Context, limit int) ([]models.DiscountPolicy, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

type stubOutboxPublisher struct {
	event  outbox.DomainEvent
	called bool
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.called = true
	s.event = event
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func adminActor() types.Actor {
	return types.AdminActor(uuid.New())
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var domainErr *pkgerrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, domainErr.Code())
	}
}

func TestCreatePolicy(t *testing.T) {
	repo := &stubDiscountsRepo{}
	publisher := &stubOutboxPublisher{}
	svc, err := NewService(repo, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	policy, err := svc.Create(context.Background(), CreateInput{
		Actor:   adminActor(),
		Percent: decimal.RequireFromString("12.5"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if policy.ID == uuid.Nil {
		t.Fatal("expected policy id assigned")
	}
	if !publisher.called {
		t.Fatal("expected outbox event")
	}
	if publisher.event.EventType != enums.EventDiscountCreated {
		t.Fatalf("unexpected event type %s", publisher.event.EventType)
	}
}

func TestCreatePolicyValidatesPercent(t *testing.T) {
	svc, _ := NewService(&stubDiscountsRepo{}, stubTxRunner{}, &stubOutboxPublisher{})

	for _, percent := range []string{"-1", "100.01", "250"} {
		_, err := svc.Create(context.Background(), CreateInput{
			Actor:   adminActor(),
			Percent: decimal.RequireFromString(percent),
		})
		expectCode(t, err, pkgerrors.CodeValidation)
	}
}

func TestCreatePolicyRequiresAdmin(t *testing.T) {
	svc, _ := NewService(&stubDiscountsRepo{}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.Create(context.Background(), CreateInput{
		Actor:   types.UserActor(uuid.New(), enums.ActorRoleTrader),
		Percent: decimal.RequireFromString("10"),
	})
	expectCode(t, err, pkgerrors.CodeForbidden)

	_, err = svc.Create(context.Background(), CreateInput{
		Percent: decimal.RequireFromString("10"),
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLatestMapsNotFound(t *testing.T) {
	svc, _ := NewService(&stubDiscountsRepo{}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.Latest(context.Background())
	expectCode(t, err, pkgerrors.CodeNotFound)
}
