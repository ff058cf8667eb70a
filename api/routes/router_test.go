package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/internal/cart"
	"github.com/karavanrugs/karavan-backend/internal/categories"
	"github.com/karavanrugs/karavan-backend/internal/discounts"
	"github.com/karavanrugs/karavan-backend/internal/orders"
	"github.com/karavanrugs/karavan-backend/internal/products"
	"github.com/karavanrugs/karavan-backend/internal/traders"
	"github.com/karavanrugs/karavan-backend/internal/users"
	pkgauth "github.com/karavanrugs/karavan-backend/pkg/auth"
	"github.com/karavanrugs/karavan-backend/pkg/config"
	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	"github.com/karavanrugs/karavan-backend/pkg/logger"
	"github.com/karavanrugs/karavan-backend/pkg/types"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubUsersService struct{}

func (stubUsersService) Register(ctx context.Context, input users.RegisterInput) (*models.User, error) {
	return &models.User{ID: uuid.New(), Name: input.Name, Email: input.Email, Role: enums.ActorRoleUser}, nil
}

func (stubUsersService) Login(ctx context.Context, input users.LoginInput) (*users.AuthResult, error) {
	return &users.AuthResult{Token: "token", User: &models.User{ID: uuid.New(), Email: input.Email}}, nil
}

func (stubUsersService) Me(ctx context.Context, actor types.Actor) (*models.User, error) {
	if actor.UserID == nil {
		return nil, nil
	}
	return &models.User{ID: *actor.UserID, Role: actor.Role}, nil
}

func (stubUsersService) ApplyForTrader(ctx context.Context, input users.ApplyForTraderInput) (*models.User, error) {
	return &models.User{TraderStatus: enums.TraderStatusApplied}, nil
}

type stubTradersService struct{}

func (stubTradersService) ListApplications(ctx context.Context, actor types.Actor, limit int) ([]models.User, error) {
	return nil, nil
}

func (stubTradersService) Approve(ctx context.Context, actor types.Actor, userID uuid.UUID) (*traders.ApprovalResult, error) {
	return &traders.ApprovalResult{User: &models.User{ID: userID}, TempPassword: "temp"}, nil
}

func (stubTradersService) Revoke(ctx context.Context, actor types.Actor, userID uuid.UUID) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

type stubProductsService struct{}

func (stubProductsService) Create(ctx context.Context, input products.CreateInput) (*models.Product, error) {
	return &models.Product{ID: uuid.New(), Title: input.Title}, nil
}

func (stubProductsService) Update(ctx context.Context, id uuid.UUID, input products.UpdateInput) (*models.Product, error) {
	return &models.Product{ID: id}, nil
}

func (stubProductsService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return &models.Product{ID: id}, nil
}

func (stubProductsService) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return &models.Product{Slug: slug}, nil
}

func (stubProductsService) List(ctx context.Context, input products.ListInput) (*products.ProductList, error) {
	return &products.ProductList{Products: []models.Product{}}, nil
}

type stubCategoriesService struct{}

func (stubCategoriesService) Create(ctx context.Context, input categories.CreateInput) (*models.Category, error) {
	return &models.Category{Name: input.Name}, nil
}

func (stubCategoriesService) Update(ctx context.Context, id uuid.UUID, input categories.UpdateInput) (*models.Category, error) {
	return &models.Category{ID: id}, nil
}

func (stubCategoriesService) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	return []models.Category{}, nil
}

type stubDiscountsService struct{}

func (stubDiscountsService) Create(ctx context.Context, input discounts.CreateInput) (*models.DiscountPolicy, error) {
	return &models.DiscountPolicy{Percent: input.Percent}, nil
}

func (stubDiscountsService) Latest(ctx context.Context) (*models.DiscountPolicy, error) {
	return nil, nil
}

func (stubDiscountsService) List(ctx context.Context, limit int) ([]models.DiscountPolicy, error) {
	return []models.DiscountPolicy{}, nil
}

type stubCartService struct{}

func (stubCartService) Get(ctx context.Context, actor types.Actor) (*cart.View, error) {
	return &cart.View{Cart: &models.Cart{Items: []models.CartItem{}}, ItemsPrice: decimal.Zero}, nil
}

func (stubCartService) AddItem(ctx context.Context, input cart.AddItemInput) (*cart.View, error) {
	return &cart.View{Cart: &models.Cart{}}, nil
}

func (stubCartService) RemoveItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) (*cart.View, error) {
	return &cart.View{Cart: &models.Cart{}}, nil
}

func (stubCartService) Clear(ctx context.Context, actor types.Actor) error { return nil }

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, input orders.CreateInput) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubOrdersService) BeginPayment(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*orders.PaymentSession, error) {
	return &orders.PaymentSession{OrderID: orderID}, nil
}

func (stubOrdersService) VerifyPayment(ctx context.Context, input orders.VerifyPaymentInput) (*models.Order, error) {
	return &models.Order{IsPaid: true}, nil
}

func (stubOrdersService) MarkDelivered(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID, IsDelivered: true}, nil
}

func (stubOrdersService) Get(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (stubOrdersService) List(ctx context.Context, input orders.ListInput) (*orders.ListResult, error) {
	return &orders.ListResult{Orders: []models.Order{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "karavan-test",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled, Output: io.Discard})
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logg,
		DBPinger:    stubPinger{},
		RedisPinger: stubPinger{},
		Users:       stubUsersService{},
		Traders:     stubTradersService{},
		Products:    stubProductsService{},
		Categories:  stubCategoriesService{},
		Discounts:   stubDiscountsService{},
		Cart:        stubCartService{},
		Orders:      stubOrdersService{},
	})
}

func mintToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := envelope["data"]; !ok {
		t.Fatalf("expected data envelope, got %s", resp.Body.String())
	}
}

func TestOrdersRejectMissingToken(t *testing.T) {
	router := newTestRouter(testConfig())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	asUser := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	asUser.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, asUser)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	asAdmin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders", nil)
	asAdmin.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, asAdmin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAccountMeReturnsActor(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/me", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleTrader))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCheckoutAcceptsJSONBody(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	body := `{"shipping_address":{"line1":"12 Loom Street","city":"Jaipur","state":"RJ","postal_code":"302001","country":"IN"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}
