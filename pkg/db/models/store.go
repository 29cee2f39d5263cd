package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pujasera/pos-backend/pkg/enums"
)

// Store is the financial and identity record of a hub, tenant or standalone outlet.
type Store struct {
	ID                     uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                   string          `gorm:"column:name;not null"`
	Kind                   enums.StoreKind `gorm:"column:kind;type:text;not null"`
	PujaseraGroupSlug      *string         `gorm:"column:pujasera_group_slug"`
	PradanaTokenBalance    float64         `gorm:"column:pradana_token_balance;not null;default:0"`
	TransactionCounter     int64           `gorm:"column:transaction_counter;not null;default:0"`
	AdminUIDs              pq.StringArray  `gorm:"column:admin_uids;type:text[]"`
	WhatsApp               *string         `gorm:"column:whatsapp"`
	LastTransactionAt      *time.Time      `gorm:"column:last_transaction_at"`
	LastReengagementSentAt *time.Time      `gorm:"column:last_reengagement_sent_at"`
	SourceJobID            *uuid.UUID      `gorm:"column:source_job_id;type:uuid"`
	CreatedAt              time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
