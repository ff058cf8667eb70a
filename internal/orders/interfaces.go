package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karavanrugs/karavan-backend/pkg/db/models"
	"github.com/karavanrugs/karavan-backend/pkg/enums"
	"github.com/karavanrugs/karavan-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their line items.
// MarkPaid and DecrementStock are conditional writes: callers branch on the
// affected-row count, not on errors.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	SetGatewaySession(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string, paidAt time.Time) (int64, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time) (int64, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, label enums.SizeLabel, qty int) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error)
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Order, error)
}
