package traders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/config"
	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/outbox"
	"github.com/karavanrugs/karavan-backend/pkg/security"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

const tempPasswordLength = 16

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ApprovalResult carries the promoted account and the one-time temp password.
// The plaintext exists only in this response; only the hash is stored.
type ApprovalResult struct {
	User         *models.User `json:"user"`
	TempPassword string       `json:"temp_password"`
}

// ApprovedEvent is the trader.approved outbox payload.
type ApprovedEvent struct {
	UserID      string  `json:"user_id"`
	CompanyName *string `json:"company_name,omitempty"`
}

// RevokedEvent is the trader.revoked outbox payload.
type RevokedEvent struct {
	UserID string `json:"user_id"`
}

// Service is the admin moderation surface for wholesale-tier access.
type Service interface {
	ListApplications(ctx context.Context, actor types.Actor, limit int) ([]models.User, error)
	Approve(ctx context.Context, actor types.Actor, userID uuid.UUID) (*ApprovalResult, error)
	Revoke(ctx context.Context, actor types.Actor, userID uuid.UUID) (*models.User, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	outbox      outboxPublisher
	passwordCfg config.PasswordConfig
}

// NewService builds a traders service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, errors.New("traders: repository is required")
	}
	if tx == nil {
		return nil, errors.New("traders: tx runner is required")
	}
	if outboxSvc == nil {
		return nil, errors.New("traders: outbox publisher is required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		outbox:      outboxSvc,
		passwordCfg: passwordCfg,
	}, nil
}

func (s *service) ListApplications(ctx context.Context, actor types.Actor, limit int) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, enums.TraderStatusApplied, limit)
}

func (s *service) Approve(ctx context.Context, actor types.Actor, userID uuid.UUID) (*ApprovalResult, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin accounts cannot hold trader access")
	}
	if user.TraderStatus == enums.TraderStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "trader access is already approved")
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash temp password")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).SetTraderState(ctx, user.ID, enums.ActorRoleTrader, enums.TraderStatusApproved, &hash)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTraderApproved,
			AggregateType: enums.AggregateTrader,
			AggregateID:   user.ID,
			Actor:         actorRef(actor),
			Data: ApprovedEvent{
				UserID:      user.ID.String(),
				CompanyName: user.CompanyName,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	approved, err := s.findUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &ApprovalResult{User: approved, TempPassword: tempPassword}, nil
}

func (s *service) Revoke(ctx context.Context, actor types.Actor, userID uuid.UUID) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.ActorRoleTrader && user.TraderStatus != enums.TraderStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "account has no trader access to revoke")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).SetTraderState(ctx, user.ID, enums.ActorRoleUser, enums.TraderStatusRevoked, nil)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTraderRevoked,
			AggregateType: enums.AggregateTrader,
			AggregateID:   user.ID,
			Actor:         actorRef(actor),
			Data:          RevokedEvent{UserID: user.ID.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, user.ID)
}

func (s *service) findUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, err
	}
	return user, nil
}

func requireAdmin(actor types.Actor) error {
	if !actor.Authenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
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
