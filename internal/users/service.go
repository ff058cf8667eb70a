package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/auth"
	"github.com/karavanrugs/karavan-backend/pkg/config"
	"github.com/karavanrugs/karavan-backend/pkg/db"
	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/security"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

// RegisterInput creates a shopper account. Trader access is applied for
// separately and granted by an admin.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput authenticates by email and password.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is a signed access token plus the account it belongs to.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ApplyForTraderInput carries the wholesale application details.
type ApplyForTraderInput struct {
	Actor       types.Actor
	CompanyName string `json:"company_name"`
	GSTNumber   string `json:"gst_number"`
}

// Service manages accounts: registration, login, trader applications.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Me(ctx context.Context, actor types.Actor) (*models.User, error)
	ApplyForTrader(ctx context.Context, input ApplyForTraderInput) (*models.User, error)
}

type service struct {
	repo        Repository
	jwtConfig   config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// NewService builds a users service with the required dependencies.
func NewService(repo Repository, jwtConfig config.JWTConfig, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, errors.New("users: repository is required")
	}
	if jwtConfig.Secret == "" {
		return nil, errors.New("users: jwt secret is required")
	}
	return &service{
		repo:        repo,
		jwtConfig:   jwtConfig,
		passwordCfg: passwordCfg,
		now:         time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and email are required")
	}
	if !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is not valid")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         enums.ActorRoleUser,
		TraderStatus: enums.TraderStatusNone,
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "ux_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
		}
		return nil, err
	}
	return created, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same error as a bad password: login must not leak which
			// emails exist.
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := auth.MintAccessToken(s.jwtConfig, s.now(), auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *service) Me(ctx context.Context, actor types.Actor) (*models.User, error) {
	if !actor.Authenticated() || actor.UserID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	user, err := s.repo.FindByID(ctx, *actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *service) ApplyForTrader(ctx context.Context, input ApplyForTraderInput) (*models.User, error) {
	if !input.Actor.Authenticated() || input.Actor.UserID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	companyName := strings.TrimSpace(input.CompanyName)
	if companyName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}

	user, err := s.repo.FindByID(ctx, *input.Actor.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, err
	}
	if user.Role == enums.ActorRoleTrader || user.TraderStatus == enums.TraderStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already has trader access")
	}
	if user.TraderStatus == enums.TraderStatusApplied {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "trader application is already pending")
	}

	var gst *string
	if v := strings.TrimSpace(input.GSTNumber); v != "" {
		gst = &v
	}
	if err := s.repo.UpdateTraderApplication(ctx, user.ID, &companyName, gst); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, user.ID)
}
