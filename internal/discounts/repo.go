package discounts

import (
	"context"

	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a discounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Insert(ctx context.Context, policy *models.DiscountPolicy) (*models.DiscountPolicy, error) {
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		return nil, err
	}
	return policy, nil
}

// Latest returns the most recently created policy. The table is insert-only,
// so created_at ordering is the policy history.
func (r *repository) Latest(ctx context.Context) (*models.DiscountPolicy, error) {
	var policy models.DiscountPolicy
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *repository) List(ctx context.Context, limit int) ([]models.DiscountPolicy, error) {
	var rows []models.DiscountPolicy
	q := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
