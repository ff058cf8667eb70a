package traders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
)

// Repository exposes the trader-moderation slice of the users table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByStatus(ctx context.Context, status enums.TraderStatus, limit int) ([]models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetTraderState(ctx context.Context, userID uuid.UUID, role enums.ActorRole, status enums.TraderStatus, passwordHash *string) (int64, error)
}
