package traders

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
	"github.com/karavanrugs/karavan-backend/pkg/outbox"
	"github.com/karavanrugs/karavan-backend/pkg/security"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

type stubTraderRepo struct {
	users    map[uuid.UUID]*models.User
	lastHash *string
}

func newStubTraderRepo(users ...*models.User) *stubTraderRepo {
	repo := &stubTraderRepo{users: map[uuid.UUID]*models.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (s *stubTraderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTraderRepo) ListByStatus(ctx context.Context, status enums.TraderStatus, limit int) ([]models.User, error) {
	var rows []models.User
	for _, user := range s.users {
		if user.TraderStatus == status {
			rows = append(rows, *user)
		}
	}
	return rows, nil
}

func (s *stubTraderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubTraderRepo) SetTraderState(ctx context.Context, userID uuid.UUID, role enums.ActorRole, status enums.TraderStatus, passwordHash *string) (int64, error) {
	user, ok := s.users[userID]
	if !ok {
		return 0, nil
	}
	user.Role = role
	user.TraderStatus = status
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	s.lastHash = passwordHash
	return 1, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubOutbox struct {
	emitted []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.emitted = append(s.emitted, event)
	return nil
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newTradersService(t *testing.T, repo Repository, ob *stubOutbox) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, ob, testPasswordConfig())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertTradersCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	var domainErr *pkgerrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, domainErr.Code(), err)
	}
}

func applicant() *models.User {
	company := "Joshi Carpets Pvt Ltd"
	return &models.User{
		ID:           uuid.New(),
		Name:         "Meera Joshi",
		Email:        "meera@example.com",
		Role:         enums.ActorRoleUser,
		TraderStatus: enums.TraderStatusApplied,
		CompanyName:  &company,
	}
}

func TestListApplicationsRequiresAdmin(t *testing.T) {
	svc := newTradersService(t, newStubTraderRepo(), &stubOutbox{})

	_, err := svc.ListApplications(context.Background(), types.UserActor(uuid.New(), enums.ActorRoleUser), 20)
	assertTradersCode(t, err, pkgerrors.CodeForbidden)
}

func TestListApplicationsFiltersByStatus(t *testing.T) {
	pending := applicant()
	approved := applicant()
	approved.ID = uuid.New()
	approved.TraderStatus = enums.TraderStatusApproved
	svc := newTradersService(t, newStubTraderRepo(pending, approved), &stubOutbox{})

	rows, err := svc.ListApplications(context.Background(), types.AdminActor(uuid.New()), 20)
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != pending.ID {
		t.Fatalf("expected only the pending application, got %+v", rows)
	}
}

func TestApprovePromotesAndIssuesTempPassword(t *testing.T) {
	user := applicant()
	repo := newStubTraderRepo(user)
	ob := &stubOutbox{}
	svc := newTradersService(t, repo, ob)

	result, err := svc.Approve(context.Background(), types.AdminActor(uuid.New()), user.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if result.User.Role != enums.ActorRoleTrader || result.User.TraderStatus != enums.TraderStatusApproved {
		t.Fatalf("expected trader/approved, got %s/%s", result.User.Role, result.User.TraderStatus)
	}
	if len(result.TempPassword) < 8 {
		t.Fatalf("temp password too short: %q", result.TempPassword)
	}
	if repo.lastHash == nil || !strings.HasPrefix(*repo.lastHash, "$argon2id$") {
		t.Fatal("approval must store an argon2id hash")
	}
	ok, err := security.VerifyPassword(result.TempPassword, *repo.lastHash)
	if err != nil || !ok {
		t.Fatalf("temp password does not verify against stored hash: ok=%v err=%v", ok, err)
	}
	if len(ob.emitted) != 1 || ob.emitted[0].EventType != enums.EventTraderApproved {
		t.Fatalf("expected one trader approved event, got %+v", ob.emitted)
	}
}

func TestApproveAlreadyApproved(t *testing.T) {
	user := applicant()
	user.Role = enums.ActorRoleTrader
	user.TraderStatus = enums.TraderStatusApproved
	svc := newTradersService(t, newStubTraderRepo(user), &stubOutbox{})

	_, err := svc.Approve(context.Background(), types.AdminActor(uuid.New()), user.ID)
	assertTradersCode(t, err, pkgerrors.CodeConflict)
}

func TestApproveUnknownAccount(t *testing.T) {
	svc := newTradersService(t, newStubTraderRepo(), &stubOutbox{})

	_, err := svc.Approve(context.Background(), types.AdminActor(uuid.New()), uuid.New())
	assertTradersCode(t, err, pkgerrors.CodeNotFound)
}

func TestRevokeDropsTraderAccess(t *testing.T) {
	user := applicant()
	user.Role = enums.ActorRoleTrader
	user.TraderStatus = enums.TraderStatusApproved
	user.PasswordHash = "$argon2id$existing"
	repo := newStubTraderRepo(user)
	ob := &stubOutbox{}
	svc := newTradersService(t, repo, ob)

	revoked, err := svc.Revoke(context.Background(), types.AdminActor(uuid.New()), user.ID)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if revoked.Role != enums.ActorRoleUser || revoked.TraderStatus != enums.TraderStatusRevoked {
		t.Fatalf("expected user/revoked, got %s/%s", revoked.Role, revoked.TraderStatus)
	}
	if revoked.PasswordHash != "$argon2id$existing" {
		t.Fatal("revocation must not rotate the credential")
	}
	if len(ob.emitted) != 1 || ob.emitted[0].EventType != enums.EventTraderRevoked {
		t.Fatalf("expected one trader revoked event, got %+v", ob.emitted)
	}
}

func TestRevokeWithoutTraderAccess(t *testing.T) {
	user := applicant()
	svc := newTradersService(t, newStubTraderRepo(user), &stubOutbox{})

	_, err := svc.Revoke(context.Background(), types.AdminActor(uuid.New()), user.ID)
	assertTradersCode(t, err, pkgerrors.CodeConflict)
}

func TestReApproveAfterRevoke(t *testing.T) {
	user := applicant()
	user.TraderStatus = enums.TraderStatusRevoked
	repo := newStubTraderRepo(user)
	ob := &stubOutbox{}
	svc := newTradersService(t, repo, ob)

	result, err := svc.Approve(context.Background(), types.AdminActor(uuid.New()), user.ID)
	if err != nil {
		t.Fatalf("re-approval must be allowed: %v", err)
	}
	if result.User.TraderStatus != enums.TraderStatusApproved {
		t.Fatalf("expected approved, got %s", result.User.TraderStatus)
	}
}
