package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/pkg/enums"
	"github.com/pujasera/pos-backend/pkg/types"
)

// Transaction is the financial record of a sale. Hub orders carry
// ItemsStatusByTenant; tenant sub-orders carry ParentTransactionID.
type Transaction struct {
	ID                  uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	StoreID             uuid.UUID               `gorm:"column:store_id;type:uuid;not null"`
	ReceiptNumber       int64                   `gorm:"column:receipt_number;not null"`
	CustomerID          *string                 `gorm:"column:customer_id"`
	CustomerName        string                  `gorm:"column:customer_name;not null;default:''"`
	Items               types.OrderItems        `gorm:"column:items;type:jsonb;not null"`
	Subtotal            float64                 `gorm:"column:subtotal;not null"`
	TaxAmount           float64                 `gorm:"column:tax_amount;not null;default:0"`
	ServiceFeeAmount    float64                 `gorm:"column:service_fee_amount;not null;default:0"`
	DiscountAmount      float64                 `gorm:"column:discount_amount;not null;default:0"`
	TotalAmount         float64                 `gorm:"column:total_amount;not null"`
	PaymentMethod       string                  `gorm:"column:payment_method;not null;default:''"`
	StaffID             string                  `gorm:"column:staff_id;not null;default:''"`
	PointsEarned        int64                   `gorm:"column:points_earned;not null;default:0"`
	PointsRedeemed      int64                   `gorm:"column:points_redeemed;not null;default:0"`
	Status              enums.TransactionStatus `gorm:"column:status;type:text;not null"`
	ItemsStatusByTenant types.TenantStatusMap   `gorm:"column:items_status_by_tenant;type:jsonb"`
	ParentTransactionID *uuid.UUID              `gorm:"column:parent_transaction_id;type:uuid"`
	TableID             *uuid.UUID              `gorm:"column:table_id;type:uuid"`
	IsFromCatalog       bool                    `gorm:"column:is_from_catalog;not null;default:false"`
	PlatformFeeTokens   float64                 `gorm:"column:platform_fee_tokens;not null;default:0"`
	SourceJobID         *uuid.UUID              `gorm:"column:source_job_id;type:uuid"`
	Error               *string                 `gorm:"column:error"`
	DistributedAt       *time.Time              `gorm:"column:distributed_at"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// IsHub reports whether the record is a hub-level order rather than a tenant sub-order.
func (t *Transaction) IsHub() bool {
	return t != nil && t.ParentTransactionID == nil
}
