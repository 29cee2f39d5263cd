package transactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/internal/checkout"
	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/types"
	"gorm.io/gorm"
)

// OrderCreateHandler runs order-create jobs: it writes the hub record and
// distributes it in one unit, so a failed job leaves nothing behind.
type OrderCreateHandler struct {
	tx          txRunner
	distributor *Distributor
	settings    fees.ScheduleSource
	logg        *logger.Logger
}

func NewOrderCreateHandler(tx txRunner, distributor *Distributor, settings fees.ScheduleSource, logg *logger.Logger) (*OrderCreateHandler, error) {
	switch {
	case tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case distributor == nil:
		return nil, fmt.Errorf("distributor required")
	case settings == nil:
		return nil, fmt.Errorf("settings source required")
	case logg == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &OrderCreateHandler{tx: tx, distributor: distributor, settings: settings, logg: logg}, nil
}

// HandleOrderCreate implements jobs.OrderHandler.
func (h *OrderCreateHandler) HandleOrderCreate(ctx context.Context, meta jobs.Meta, payload jobs.OrderCreatePayload) error {
	items := cartItems(payload.Cart)
	if err := validateOrder(items, payload.TaxAmount, payload.ServiceFeeAmount, payload.DiscountAmount, payload.PointsEarned, payload.PointsToRedeem); err != nil {
		return err
	}

	settings, err := h.settings.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform settings")
	}

	hubID := HubOrderID(meta.ID, payload.OrderID)
	ctx = h.logg.WithTransactionID(ctx, hubID.String())

	return h.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := h.distributor.repo.WithTx(tx)

		hub, err := repo.Find(ctx, hubID)
		if err != nil {
			return err
		}
		if hub == nil {
			hub, err = h.createHub(ctx, tx, hubID, meta, payload, items)
			if err != nil {
				return err
			}
		} else if hub.StoreID != payload.PujaseraID {
			return pkgerrors.New(pkgerrors.CodeConflict, "order id already used by another store")
		}

		_, err = h.distributor.Distribute(ctx, tx, hub, settings.Schedule)
		return err
	})
}

func (h *OrderCreateHandler) createHub(ctx context.Context, tx *gorm.DB, id uuid.UUID, meta jobs.Meta, payload jobs.OrderCreatePayload, items []types.OrderItem) (*models.Transaction, error) {
	if _, err := h.distributor.stores.WithTx(tx).Get(ctx, payload.PujaseraID); err != nil {
		return nil, err
	}
	receipt, err := h.distributor.receipts.Next(ctx, tx, payload.PujaseraID)
	if err != nil {
		return nil, err
	}

	subtotal := checkout.Subtotal(items)
	jobID := meta.ID
	hub := &models.Transaction{
		ID:               id,
		StoreID:          payload.PujaseraID,
		ReceiptNumber:    receipt,
		CustomerID:       customerID(payload.Customer),
		CustomerName:     strings.TrimSpace(payload.Customer.Name),
		Items:            items,
		Subtotal:         subtotal,
		TaxAmount:        payload.TaxAmount,
		ServiceFeeAmount: payload.ServiceFeeAmount,
		DiscountAmount:   payload.DiscountAmount,
		TotalAmount:      checkout.ComputeTotal(subtotal, payload.DiscountAmount, payload.TaxAmount, payload.ServiceFeeAmount),
		PaymentMethod:    payload.PaymentMethod,
		StaffID:          payload.StaffID,
		PointsEarned:     payload.PointsEarned,
		PointsRedeemed:   payload.PointsToRedeem,
		Status:           enums.TransactionStatusProcessing,
		TableID:          payload.TableID,
		IsFromCatalog:    payload.IsFromCatalog,
		SourceJobID:      &jobID,
	}
	if payload.TotalAmount != hub.TotalAmount {
		h.logg.Warn(h.logg.WithFields(ctx, map[string]any{
			"client_total":   payload.TotalAmount,
			"computed_total": hub.TotalAmount,
		}), "client total differs from computed total")
	}
	if err := h.distributor.repo.WithTx(tx).Create(ctx, hub); err != nil {
		return nil, err
	}
	return hub, nil
}

func cartItems(cart []jobs.CartItem) []types.OrderItem {
	items := make([]types.OrderItem, 0, len(cart))
	for _, c := range cart {
		items = append(items, types.OrderItem{
			ProductID:        c.ProductID,
			Name:             c.ProductName,
			Quantity:         c.Quantity,
			UnitPrice:        c.Price,
			Notes:            c.Notes,
			OriginTenantID:   c.StoreID,
			OriginTenantName: c.StoreName,
		})
	}
	return items
}

func customerID(c *jobs.Customer) *string {
	if c == nil {
		return nil
	}
	id := strings.TrimSpace(c.ID)
	if id == "" {
		return nil
	}
	return &id
}
