package traders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a traders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByStatus(ctx context.Context, status enums.TraderStatus, limit int) ([]models.User, error) {
	var rows []models.User
	q := r.db.WithContext(ctx).
		Where("trader_status = ?", status).
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetTraderState updates role and trader status together; a non-nil hash also
// rotates the credential (approval issues a temp password).
func (r *repository) SetTraderState(ctx context.Context, userID uuid.UUID, role enums.ActorRole, status enums.TraderStatus, passwordHash *string) (int64, error) {
	updates := map[string]any{
		"role":          role,
		"trader_status": status,
	}
	if passwordHash != nil {
		updates["password_hash"] = *passwordHash
	}
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(updates)
	return res.RowsAffected, res.Error
}
