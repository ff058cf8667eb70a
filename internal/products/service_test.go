package products

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
)

type stubProductsRepo struct {
	created      *models.Product
	updates      map[string]any
	replaced     []models.ProductSize
	found        *models.Product
	createErr    error
	findErr      error
	replaceCalls int
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	product.ID = uuid.New()
	s.created = product
	return product, nil
}

func (s *stubProductsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubProductsRepo) ReplaceSizes(ctx context.Context, productID uuid.UUID, sizes []models.ProductSize) error {
	s.replaceCalls++
	s.replaced = sizes
	return nil
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.found != nil {
		return s.found, nil
	}
	if s.created != nil {
		return s.created, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductsRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return s.FindByID(ctx, uuid.Nil)
}

func (s *stubProductsRepo) List(ctx context.Context, input ListInput) (*ProductList, error) {
	return &ProductList{}, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var domainErr *pkgerrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, domainErr.Code())
	}
}

func validCreateInput() CreateInput {
	return CreateInput{
		CategoryID: uuid.New(),
		Title:      "Heritage Kilim Runner",
		Colors:     []string{"Red", "red", " Ivory "},
		Sizes: []SizeInput{
			{SizeLabel: enums.SizeLabel2x3, Price: decimal.RequireFromString("149.00"), Stock: 10},
			{SizeLabel: enums.SizeLabel5x8, Price: decimal.RequireFromString("499.00"), Stock: 4},
		},
	}
}

func TestCreateProduct(t *testing.T) {
	repo := &stubProductsRepo{}
	svc := newService(t, repo)

	product, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Slug != "heritage-kilim-runner" {
		t.Fatalf("expected slug from title, got %s", product.Slug)
	}
	if len(product.Colors) != 2 {
		t.Fatalf("expected deduplicated colors, got %v", product.Colors)
	}
	if !product.IsActive {
		t.Fatal("new products should start active")
	}
	if len(product.Sizes) != 2 {
		t.Fatalf("expected 2 sizes, got %d", len(product.Sizes))
	}
}

func TestCreateProductRejectsBadSizes(t *testing.T) {
	svc := newService(t, &stubProductsRepo{})

	cases := map[string]func(*CreateInput){
		"no sizes":       func(in *CreateInput) { in.Sizes = nil },
		"unknown label":  func(in *CreateInput) { in.Sizes[0].SizeLabel = "10x14" },
		"duplicate":      func(in *CreateInput) { in.Sizes[1].SizeLabel = in.Sizes[0].SizeLabel },
		"negative price": func(in *CreateInput) { in.Sizes[0].Price = decimal.RequireFromString("-1") },
		"negative stock": func(in *CreateInput) { in.Sizes[0].Stock = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validCreateInput()
			mutate(&input)
			_, err := svc.Create(context.Background(), input)
			requireCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	repo := &stubProductsRepo{createErr: errors.New(`duplicate key value violates unique constraint "ux_products_slug"`)}
	svc := newService(t, repo)

	_, err := svc.Create(context.Background(), validCreateInput())
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateProductReplacesSizes(t *testing.T) {
	repo := &stubProductsRepo{found: &models.Product{ID: uuid.New()}}
	svc := newService(t, repo)

	_, err := svc.Update(context.Background(), repo.found.ID, UpdateInput{
		Sizes: []SizeInput{
			{SizeLabel: enums.SizeLabel3x5, Price: decimal.RequireFromString("220.00"), Stock: 7},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.replaceCalls != 1 {
		t.Fatalf("expected one ReplaceSizes call, got %d", repo.replaceCalls)
	}
	if len(repo.replaced) != 1 || repo.replaced[0].SizeLabel != enums.SizeLabel3x5 {
		t.Fatalf("unexpected replaced sizes %v", repo.replaced)
	}
}

func TestUpdateProductNoFields(t *testing.T) {
	svc := newService(t, &stubProductsRepo{})

	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestGetProductNotFound(t *testing.T) {
	svc := newService(t, &stubProductsRepo{findErr: gorm.ErrRecordNotFound})

	_, err := svc.Get(context.Background(), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}
