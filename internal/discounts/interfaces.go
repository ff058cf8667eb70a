package discounts

import (
	"context"

	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
)

// Repository defines persistence operations for the discount policy history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, policy *models.DiscountPolicy) (*models.DiscountPolicy, error)
	Latest(ctx context.Context) (*models.DiscountPolicy, error)
	List(ctx context.Context, limit int) ([]models.DiscountPolicy, error)
}
