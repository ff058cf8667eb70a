package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountPolicy is the global trader discount. Insert-only: the newest row is
// the active policy, older rows are retained as history.
type DiscountPolicy struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Percent   decimal.Decimal `gorm:"column:percent;type:numeric(5,2);not null"`
	CreatedBy uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
