package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/internal/categories"
	dbpkg "github.com/karavanrugs/karavan-backend/pkg/db"
	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the product catalog.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, input ListInput) (*ProductList, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a products service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title required")
	}
	sizes, err := buildSizes(input.Sizes)
	if err != nil {
		return nil, err
	}

	slug := categories.Slugify(input.Slug)
	if slug == "" {
		slug = categories.Slugify(title)
	}

	product := &models.Product{
		CategoryID:  input.CategoryID,
		Title:       title,
		Slug:        slug,
		Description: input.Description,
		Brand:       input.Brand,
		Material:    input.Material,
		Colors:      pq.StringArray(normalizeColors(input.Colors)),
		IsActive:    true,
		IsFeatured:  input.IsFeatured,
		Sizes:       sizes,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_products_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates := map[string]any{}
	if input.CategoryID != nil {
		if *input.CategoryID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id cannot be empty")
		}
		updates["category_id"] = *input.CategoryID
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Brand != nil {
		updates["brand"] = *input.Brand
	}
	if input.Material != nil {
		updates["material"] = *input.Material
	}
	if input.Colors != nil {
		updates["colors"] = pq.StringArray(normalizeColors(input.Colors))
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		updates["is_featured"] = *input.IsFeatured
	}

	var sizes []models.ProductSize
	if input.Sizes != nil {
		var err error
		sizes, err = buildSizes(input.Sizes)
		if err != nil {
			return nil, err
		}
	}

	if len(updates) == 0 && input.Sizes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
			}
		}
		if input.Sizes != nil {
			if err := repo.ReplaceSizes(ctx, id, sizes); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace product sizes")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ProductList, error) {
	list, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func buildSizes(inputs []SizeInput) ([]models.ProductSize, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one size required")
	}
	seen := map[string]bool{}
	sizes := make([]models.ProductSize, 0, len(inputs))
	for _, in := range inputs {
		if !in.SizeLabel.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid size label").
				WithDetails(map[string]any{"size_label": string(in.SizeLabel)})
		}
		if seen[string(in.SizeLabel)] {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate size label").
				WithDetails(map[string]any{"size_label": string(in.SizeLabel)})
		}
		seen[string(in.SizeLabel)] = true
		if in.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		if in.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		sizes = append(sizes, models.ProductSize{
			SizeLabel: in.SizeLabel,
			Price:     in.Price,
			Stock:     in.Stock,
		})
	}
	return sizes, nil
}

func normalizeColors(colors []string) []string {
	out := make([]string, 0, len(colors))
	seen := map[string]bool{}
	for _, color := range colors {
		c := strings.ToLower(strings.TrimSpace(color))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
