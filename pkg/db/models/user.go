package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/pkg/enums"
)

// User links an authentication identity to the store it operates.
type User struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IdentityID uuid.UUID      `gorm:"column:identity_id;type:uuid;not null"`
	StoreID    uuid.UUID      `gorm:"column:store_id;type:uuid;not null"`
	Name       string         `gorm:"column:name;not null"`
	Email      string         `gorm:"column:email;not null"`
	WhatsApp   *string        `gorm:"column:whatsapp"`
	Role       enums.UserRole `gorm:"column:role;type:text;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
