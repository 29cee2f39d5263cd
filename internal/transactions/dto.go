package transactions

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/types"
)

// CreateInput is a hub order written directly by a cashier device.
type CreateInput struct {
	ID               *uuid.UUID
	StoreID          uuid.UUID
	CustomerID       *string
	CustomerName     string
	Items            []types.OrderItem
	TaxAmount        float64
	ServiceFeeAmount float64
	DiscountAmount   float64
	PaymentMethod    string
	StaffID          string
	PointsEarned     int64
	PointsRedeemed   int64
	TableID          *uuid.UUID
	IsFromCatalog    bool
}

func (in CreateInput) validate() error {
	if in.StoreID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if in.PaymentMethod != "" && !enums.PaymentMethod(in.PaymentMethod).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").WithDetails(map[string]any{"paymentMethod": in.PaymentMethod})
	}
	return validateOrder(in.Items, in.TaxAmount, in.ServiceFeeAmount, in.DiscountAmount, in.PointsEarned, in.PointsRedeemed)
}

// validateOrder holds the business checks shared by both hub entry points.
func validateOrder(items []types.OrderItem, tax, service, discount float64, earned, redeemed int64) error {
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "item name required").WithDetails(map[string]any{"index": i})
		}
		if item.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive").WithDetails(map[string]any{"index": i})
		}
		if item.UnitPrice < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price must not be negative").WithDetails(map[string]any{"index": i})
		}
	}
	if tax < 0 || service < 0 || discount < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amounts must not be negative")
	}
	if earned < 0 || redeemed < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "points must not be negative")
	}
	return nil
}

// TransactionDTO is the API view of a transaction.
type TransactionDTO struct {
	ID                  uuid.UUID               `json:"id"`
	StoreID             uuid.UUID               `json:"storeId"`
	ReceiptNumber       int64                   `json:"receiptNumber"`
	CustomerID          *string                 `json:"customerId,omitempty"`
	CustomerName        string                  `json:"customerName"`
	Items               types.OrderItems        `json:"items"`
	Subtotal            float64                 `json:"subtotal"`
	TaxAmount           float64                 `json:"taxAmount"`
	ServiceFeeAmount    float64                 `json:"serviceFeeAmount"`
	DiscountAmount      float64                 `json:"discountAmount"`
	TotalAmount         float64                 `json:"totalAmount"`
	PaymentMethod       string                  `json:"paymentMethod"`
	Status              enums.TransactionStatus `json:"status"`
	ItemsStatusByTenant types.TenantStatusMap   `json:"itemsStatusByTenant,omitempty"`
	ParentTransactionID *uuid.UUID              `json:"parentTransactionId,omitempty"`
	TableID             *uuid.UUID              `json:"tableId,omitempty"`
	PlatformFeeTokens   float64                 `json:"platformFeeTokens"`
	Error               *string                 `json:"error,omitempty"`
	CreatedAt           time.Time               `json:"createdAt"`
	SubOrders           []TransactionDTO        `json:"subOrders,omitempty"`
}

// FromModel maps a persisted transaction into its API view.
func FromModel(m *models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:                  m.ID,
		StoreID:             m.StoreID,
		ReceiptNumber:       m.ReceiptNumber,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		Items:               m.Items,
		Subtotal:            m.Subtotal,
		TaxAmount:           m.TaxAmount,
		ServiceFeeAmount:    m.ServiceFeeAmount,
		DiscountAmount:      m.DiscountAmount,
		TotalAmount:         m.TotalAmount,
		PaymentMethod:       m.PaymentMethod,
		Status:              m.Status,
		ItemsStatusByTenant: m.ItemsStatusByTenant,
		ParentTransactionID: m.ParentTransactionID,
		TableID:             m.TableID,
		PlatformFeeTokens:   m.PlatformFeeTokens,
		Error:               m.Error,
		CreatedAt:           m.CreatedAt,
	}
}
