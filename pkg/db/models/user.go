package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/karavanrugs/karavan-backend/pkg/enums"
)

// User is a shopper, trader, or back-office admin account.
type User struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string             `gorm:"column:name;not null"`
	Email        string             `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	Role         enums.ActorRole    `gorm:"column:role;type:text;not null;default:'user'"`
	TraderStatus enums.TraderStatus `gorm:"column:trader_status;type:text;not null;default:'none'"`
	CompanyName  *string            `gorm:"column:company_name"`
	GSTNumber    *string            `gorm:"column:gst_number"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
