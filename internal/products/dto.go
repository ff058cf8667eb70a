package products

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	"github.com/karavanrugs/karavan-backend/pkg/pagination"
)

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	CategoryID   *uuid.UUID       `json:"category_id,omitempty"`
	CategorySlug string           `json:"category,omitempty"`
	Color        string           `json:"color,omitempty"`
	SizeLabel    *enums.SizeLabel `json:"size,omitempty"`
	PriceMin     *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax     *decimal.Decimal `json:"price_max,omitempty"`
	FeaturedOnly bool             `json:"featured,omitempty"`
	Query        string           `json:"q,omitempty"`
}

// ListInput captures the inputs needed to paginate/filter the catalog.
type ListInput struct {
	Filters         ListFilters
	Pagination      pagination.Params
	IncludeInactive bool
}

// ProductList wraps the paginated products plus the next page cursor.
type ProductList struct {
	Products   []models.Product `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// SizeInput is one variant row supplied on create/update.
type SizeInput struct {
	SizeLabel enums.SizeLabel `json:"size_label"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// CreateInput captures a new product listing.
type CreateInput struct {
	CategoryID  uuid.UUID
	Title       string
	Slug        string
	Description *string
	Brand       *string
	Material    *string
	Colors      []string
	IsFeatured  bool
	Sizes       []SizeInput
}

// UpdateInput carries the mutable product fields. Nil pointers leave the
// stored value untouched; a non-nil Sizes slice replaces all variant rows.
type UpdateInput struct {
	CategoryID  *uuid.UUID
	Title       *string
	Description *string
	Brand       *string
	Material    *string
	Colors      []string
	IsActive    *bool
	IsFeatured  *bool
	Sizes       []SizeInput
}
