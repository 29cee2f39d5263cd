package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a tenant catalog entry with its on-hand stock.
type Product struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID    uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	Price      float64   `gorm:"column:price;not null"`
	Stock      int64     `gorm:"column:stock;not null;default:0"`
	TrackStock bool      `gorm:"column:track_stock;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
