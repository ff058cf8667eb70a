package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/config"
	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
	"github.com/karavanrugs/karavan-backend/pkg/security"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

type stubUserRepo struct {
	byID        map[uuid.UUID]*models.User
	byEmail     map[string]*models.User
	createErr   error
	applied     bool
	companyName *string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byID:    map[uuid.UUID]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (s *stubUserRepo) add(user *models.User) {
	s.byID[user.ID] = user
	s.byEmail[strings.ToLower(user.Email)] = user
}

func (s *stubUserRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.add(user)
	return user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) UpdateTraderApplication(ctx context.Context, userID uuid.UUID, companyName, gstNumber *string) error {
	s.applied = true
	s.companyName = companyName
	if user, ok := s.byID[userID]; ok {
		user.TraderStatus = enums.TraderStatusApplied
		user.CompanyName = companyName
		user.GSTNumber = gstNumber
	}
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "karavan-test",
		ExpirationMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Small argon params keep hashing fast in tests.
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newUsersService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, testJWTConfig(), testPasswordConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertUsersCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	var domainErr *pkgerrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, domainErr.Code(), err)
	}
}

func TestRegisterHashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUsersService(t, repo)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Meera Joshi",
		Email:    "  Meera@Example.COM ",
		Password: "weaver-knots-9",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "meera@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Role != enums.ActorRoleUser || user.TraderStatus != enums.TraderStatusNone {
		t.Fatalf("new accounts must be plain users, got %s/%s", user.Role, user.TraderStatus)
	}
	if user.PasswordHash == "weaver-knots-9" || !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Fatalf("password must be stored as an argon2id hash, got %q", user.PasswordHash)
	}
	ok, err := security.VerifyPassword("weaver-knots-9", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "ux_users_email"`)
	svc := newUsersService(t, repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Meera Joshi",
		Email:    "meera@example.com",
		Password: "weaver-knots-9",
	})
	assertUsersCode(t, err, pkgerrors.CodeConflict)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newUsersService(t, newStubUserRepo())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Meera Joshi",
		Email:    "meera@example.com",
		Password: "short",
	})
	assertUsersCode(t, err, pkgerrors.CodeValidation)
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUsersService(t, repo)

	registered, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Meera Joshi",
		Email:    "meera@example.com",
		Password: "weaver-knots-9",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "meera@example.com",
		Password: "weaver-knots-9",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a signed token")
	}
	if result.User.ID != registered.ID {
		t.Fatal("login returned the wrong account")
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	repo := newStubUserRepo()
	svc := newUsersService(t, repo)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Meera Joshi",
		Email:    "meera@example.com",
		Password: "weaver-knots-9",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPassword := svc.Login(context.Background(), LoginInput{
		Email:    "meera@example.com",
		Password: "not-the-password",
	})
	assertUsersCode(t, wrongPassword, pkgerrors.CodeUnauthorized)

	_, unknownEmail := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "weaver-knots-9",
	})
	assertUsersCode(t, unknownEmail, pkgerrors.CodeUnauthorized)

	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("credential failures must be indistinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestApplyForTraderMarksApplication(t *testing.T) {
	repo := newStubUserRepo()
	user := &models.User{ID: uuid.New(), Name: "Meera", Email: "meera@example.com", Role: enums.ActorRoleUser}
	repo.add(user)
	svc := newUsersService(t, repo)

	updated, err := svc.ApplyForTrader(context.Background(), ApplyForTraderInput{
		Actor:       types.UserActor(user.ID, enums.ActorRoleUser),
		CompanyName: "Joshi Carpets Pvt Ltd",
		GSTNumber:   "27AAPFU0939F1ZV",
	})
	if err != nil {
		t.Fatalf("ApplyForTrader: %v", err)
	}
	if updated.TraderStatus != enums.TraderStatusApplied {
		t.Fatalf("expected applied status, got %s", updated.TraderStatus)
	}
	if !repo.applied || repo.companyName == nil || *repo.companyName != "Joshi Carpets Pvt Ltd" {
		t.Fatal("application details were not persisted")
	}
}

func TestApplyForTraderAlreadyPending(t *testing.T) {
	repo := newStubUserRepo()
	user := &models.User{ID: uuid.New(), Email: "meera@example.com", Role: enums.ActorRoleUser, TraderStatus: enums.TraderStatusApplied}
	repo.add(user)
	svc := newUsersService(t, repo)

	_, err := svc.ApplyForTrader(context.Background(), ApplyForTraderInput{
		Actor:       types.UserActor(user.ID, enums.ActorRoleUser),
		CompanyName: "Joshi Carpets Pvt Ltd",
	})
	assertUsersCode(t, err, pkgerrors.CodeConflict)
}

func TestApplyForTraderAlreadyTrader(t *testing.T) {
	repo := newStubUserRepo()
	user := &models.User{ID: uuid.New(), Email: "meera@example.com", Role: enums.ActorRoleTrader, TraderStatus: enums.TraderStatusApproved}
	repo.add(user)
	svc := newUsersService(t, repo)

	_, err := svc.ApplyForTrader(context.Background(), ApplyForTraderInput{
		Actor:       types.UserActor(user.ID, enums.ActorRoleTrader),
		CompanyName: "Joshi Carpets Pvt Ltd",
	})
	assertUsersCode(t, err, pkgerrors.CodeConflict)
}
