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

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "gateway_order_id = ?", gatewayOrderID).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) SetGatewaySession(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"gateway_order_id": gatewayOrderID,
			"payment_status":   enums.PaymentStatusPending,
		}).Error
}

// MarkPaid flips the paid flag once. The is_paid guard makes the write
// idempotent: replays match zero rows and leave paid_at untouched.
func (r *repository) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentID string, paidAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND is_paid = false", orderID).
		Updates(map[string]any{
			"is_paid":        true,
			"paid_at":        paidAt,
			"payment_id":     paymentID,
			"payment_status": enums.PaymentStatusCaptured,
		})
	return res.RowsAffected, res.Error
}

// MarkDelivered has no paid guard: cash-on-delivery orders are delivered
// before any payment is recorded.
func (r *repository) MarkDelivered(ctx context.Context, orderID uuid.UUID, deliveredAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"is_delivered": true,
			"delivered_at": deliveredAt,
		})
	return res.RowsAffected, res.Error
}

// DecrementStock takes qty units from a variant only when enough remain.
// Zero affected rows means insufficient stock (or an unknown variant).
func (r *repository) DecrementStock(ctx context.Context, productID uuid.UUID, label enums.SizeLabel, qty int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE product_sizes SET stock = stock - ? WHERE product_id = ? AND size_label = ? AND stock >= ?`,
		qty, productID, label, qty,
	)
	return res.RowsAffected, res.Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	return page(q, limit, cursor)
}

func (r *repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	return page(r.db.WithContext(ctx), limit, cursor)
}

func page(q *gorm.DB, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	if cursor != nil {
		q = q.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}
	var rows []models.Order
	err := q.
		Preload("Items").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
