package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/pkg/enums"
)

// TokenLedgerEntry records one movement of a store's token balance.
type TokenLedgerEntry struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	StoreID   uuid.UUID            `gorm:"column:store_id;type:uuid;not null"`
	Kind      enums.TokenEntryKind `gorm:"column:kind;type:text;not null"`
	Amount    float64              `gorm:"column:amount;not null"`
	Reference string               `gorm:"column:reference;not null"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
}
