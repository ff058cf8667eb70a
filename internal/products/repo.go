package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ReplaceSizes swaps the full variant set for a product. Runs inside the
// caller's transaction when reached through WithTx.
func (r *repository) ReplaceSizes(ctx context.Context, productID uuid.UUID, sizes []models.ProductSize) error {
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&models.ProductSize{}).Error; err != nil {
		return err
	}
	if len(sizes) == 0 {
		return nil
	}
	for i := range sizes {
		sizes[i].ProductID = productID
	}
	return r.db.WithContext(ctx).Create(&sizes).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Sizes").
		Preload("Category").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Sizes").
		Preload("Category").
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, input ListInput) (*ProductList, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(input.Pagination.Limit)

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Preload("Sizes").
		Joins("JOIN categories c ON c.id = products.category_id")

	if !input.IncludeInactive {
		qb = qb.Where("products.is_active = ?", true)
		qb = qb.Where("c.is_active = ?", true)
	}

	filter := input.Filters
	if filter.CategoryID != nil {
		qb = qb.Where("products.category_id = ?", *filter.CategoryID)
	}
	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		qb = qb.Where("c.slug = ?", slug)
	}
	if color := strings.TrimSpace(filter.Color); color != "" {
		qb = qb.Where("? = ANY(products.colors)", strings.ToLower(color))
	}
	if filter.FeaturedOnly {
		qb = qb.Where("products.is_featured = ?", true)
	}
	if filter.SizeLabel != nil || filter.PriceMin != nil || filter.PriceMax != nil {
		sub := "EXISTS (SELECT 1 FROM product_sizes ps WHERE ps.product_id = products.id"
		args := []any{}
		if filter.SizeLabel != nil {
			sub += " AND ps.size_label = ?"
			args = append(args, *filter.SizeLabel)
		}
		if filter.PriceMin != nil {
			sub += " AND ps.price >= ?"
			args = append(args, *filter.PriceMin)
		}
		if filter.PriceMax != nil {
			sub += " AND ps.price <= ?"
			args = append(args, *filter.PriceMax)
		}
		sub += ")"
		qb = qb.Where(sub, args...)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(products.title) LIKE ? OR LOWER(COALESCE(products.brand, '')) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(products.created_at < ?) OR (products.created_at = ? AND products.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("products.created_at DESC").Order("products.id DESC").Limit(limitWithBuffer)

	var rows []models.Product
	if err := qb.Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ProductList{
		Products:   rows,
		NextCursor: nextCursor,
	}, nil
}
