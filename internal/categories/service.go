package categories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/karavanrugs/karavan-backend/pkg/db"
	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	pkgerrors "github.com/karavanrugs/karavan-backend/pkg/errors"
)

var (
	slugSanitizeRe = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashRunRe  = regexp.MustCompile(`-{2,}`)
)

// CreateInput captures a new catalog category.
type CreateInput struct {
	Name string
	Slug string
}

// UpdateInput carries the mutable category fields.
type UpdateInput struct {
	Name     *string
	IsActive *bool
}

// Service manages the admin-curated category table.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error)
	List(ctx context.Context, activeOnly bool) ([]models.Category, error)
}

type service struct {
	repo Repository
}

// NewService builds a categories service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name required")
	}
	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug required")
	}

	category, err := s.repo.Create(ctx, &models.Category{Name: name, Slug: slug, IsActive: true})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_categories_slug") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}
	return category, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Category, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name cannot be empty")
		}
		updates["name"] = name
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	return category, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

// Slugify lowercases and strips the value down to url-safe characters.
func Slugify(value string) string {
	slug := strings.ToLower(strings.TrimSpace(value))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugSanitizeRe.ReplaceAllString(slug, "-")
	slug = slugDashRunRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
