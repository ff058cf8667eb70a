package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/pkg/enums"
)

// Product represents a rug listing. Price and stock live on the size rows:
// each (product, size) pair is an independently priced and stocked variant.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  uuid.UUID      `gorm:"column:category_id;type:uuid;not null"`
	Title       string         `gorm:"column:title;not null"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex"`
	Description *string        `gorm:"column:description"`
	Brand       *string        `gorm:"column:brand"`
	Material    *string        `gorm:"column:material"`
	Colors      pq.StringArray `gorm:"column:colors;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	IsFeatured  bool           `gorm:"column:is_featured;not null;default:false"`
	Sizes       []ProductSize  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Category    *Category      `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// SizeByLabel returns the size row matching the label, or nil.
func (p *Product) SizeByLabel(label enums.SizeLabel) *ProductSize {
	for i := range p.Sizes {
		if p.Sizes[i].SizeLabel == label {
			return &p.Sizes[i]
		}
	}
	return nil
}

// ProductSize is one sellable variant of a product. Stock is guarded by a
// CHECK (stock >= 0) constraint; decrements go through a conditional UPDATE.
type ProductSize struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_product_sizes_product_label"`
	SizeLabel enums.SizeLabel `gorm:"column:size_label;type:text;not null;uniqueIndex:ux_product_sizes_product_label"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock     int             `gorm:"column:stock;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
