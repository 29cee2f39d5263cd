package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/pkg/enums"
	"github.com/pujasera/pos-backend/pkg/types"
)

// Table is a physical or virtual seating unit of a hub.
type Table struct {
	ID           uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID      uuid.UUID                 `gorm:"column:store_id;type:uuid;not null"`
	Name         string                    `gorm:"column:name;not null"`
	Status       enums.TableStatus         `gorm:"column:status;type:text;not null"`
	CurrentOrder *types.TableOrderSnapshot `gorm:"column:current_order;type:jsonb"`
	IsVirtual    bool                      `gorm:"column:is_virtual;not null;default:false"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
