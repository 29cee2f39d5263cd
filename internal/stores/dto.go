package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
)

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Kind                enums.StoreKind `json:"kind"`
	PujaseraGroupSlug   *string         `json:"pujasera_group_slug,omitempty"`
	PradanaTokenBalance float64         `json:"pradana_token_balance"`
	TransactionCounter  int64           `json:"transaction_counter"`
	WhatsApp            *string         `json:"whatsapp,omitempty"`
	LastTransactionAt   *time.Time      `json:"last_transaction_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:                  m.ID,
		Name:                m.Name,
		Kind:                m.Kind,
		PujaseraGroupSlug:   m.PujaseraGroupSlug,
		PradanaTokenBalance: m.PradanaTokenBalance,
		TransactionCounter:  m.TransactionCounter,
		WhatsApp:            m.WhatsApp,
		LastTransactionAt:   m.LastTransactionAt,
		CreatedAt:           m.CreatedAt,
	}
}

// RevenueRow is one store's revenue inside a report window.
type RevenueRow struct {
	StoreID   uuid.UUID `gorm:"column:store_id"`
	StoreName string    `gorm:"column:store_name"`
	Orders    int64     `gorm:"column:orders"`
	Revenue   float64   `gorm:"column:revenue"`
}

// Contact is an administrator reachable over WhatsApp.
type Contact struct {
	UserID   uuid.UUID `gorm:"column:id"`
	Name     string    `gorm:"column:name"`
	WhatsApp string    `gorm:"column:whatsapp"`
}
