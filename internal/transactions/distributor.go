package transactions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/internal/checkout"
	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/internal/inventory"
	"github.com/pujasera/pos-backend/internal/loyalty"
	"github.com/pujasera/pos-backend/internal/receipts"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/internal/tokens"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/types"
	"gorm.io/gorm"
)

// tableMutator is the slice of the table state machine the fan-out drives.
type tableMutator interface {
	Occupy(ctx context.Context, tx *gorm.DB, id uuid.UUID, snapshot types.TableOrderSnapshot) error
	Clear(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

// DistributorParams wires the fan-out collaborators.
type DistributorParams struct {
	Repo      *Repository
	Stores    *stores.Repository
	Ledger    *tokens.Ledger
	Receipts  *receipts.Sequencer
	Inventory *inventory.Adjuster
	Loyalty   *loyalty.Adjuster
	Tables    tableMutator
	Logger    *logger.Logger
	Now       func() time.Time
}

// Distributor fans a hub order out to its tenants. It is the only place the
// per-tenant receipt, stock, fee, loyalty and table rules are applied; both
// the order-create job and the transaction_created trigger call it.
type Distributor struct {
	repo      *Repository
	stores    *stores.Repository
	ledger    *tokens.Ledger
	receipts  *receipts.Sequencer
	inventory *inventory.Adjuster
	loyalty   *loyalty.Adjuster
	tables    tableMutator
	logg      *logger.Logger
	now       func() time.Time
}

func NewDistributor(params DistributorParams) (*Distributor, error) {
	switch {
	case params.Repo == nil:
		return nil, fmt.Errorf("transactions repository required")
	case params.Stores == nil:
		return nil, fmt.Errorf("stores repository required")
	case params.Ledger == nil:
		return nil, fmt.Errorf("token ledger required")
	case params.Receipts == nil:
		return nil, fmt.Errorf("receipt sequencer required")
	case params.Inventory == nil:
		return nil, fmt.Errorf("inventory adjuster required")
	case params.Loyalty == nil:
		return nil, fmt.Errorf("loyalty adjuster required")
	case params.Tables == nil:
		return nil, fmt.Errorf("table service required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Distributor{
		repo:      params.Repo,
		stores:    params.Stores,
		ledger:    params.Ledger,
		receipts:  params.Receipts,
		inventory: params.Inventory,
		loyalty:   params.Loyalty,
		tables:    params.Tables,
		logg:      params.Logger,
		now:       now,
	}, nil
}

// Result describes one Distribute run.
type Result struct {
	SubOrders     []models.Transaction
	Dropped       []types.OrderItem
	FeeTokens     float64
	Status        enums.TransactionStatus
	FirstDelivery bool
}

// Distribute writes the tenant sub-orders of hub and settles it, all inside tx.
//
// Idempotency contract: sub-order ids are SubOrderID(hub, tenant) and are
// upserted, existing receipt numbers are reused, and the one-time effects
// (stock, fee debit, loyalty, table, last-transaction stamps) run only on the
// delivery that claims distributed_at. Running Distribute again for the same
// hub converges on the same rows without repeating any of them.
func (d *Distributor) Distribute(ctx context.Context, tx *gorm.DB, hub *models.Transaction, schedule fees.Schedule) (*Result, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if !hub.IsHub() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only hub orders are distributed").
			WithDetails(map[string]any{"transaction_id": hub.ID.String()})
	}
	if hub.Status == enums.TransactionStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is cancelled").
			WithDetails(map[string]any{"transaction_id": hub.ID.String()})
	}

	ctx = d.logg.WithTransactionID(ctx, hub.ID.String())
	ctx = d.logg.WithStoreID(ctx, hub.StoreID.String())

	repo := d.repo.WithTx(tx)
	storeRepo := d.stores.WithTx(tx)

	groups := checkout.SortedGroups(checkout.Split(hub.Items))
	dropped := checkout.Dropped(hub.Items)
	for _, item := range dropped {
		d.logg.Warn(d.logg.WithFields(ctx, map[string]any{
			"product_id":       item.ProductID,
			"origin_tenant_id": item.OriginTenantID,
		}), "cart item without tenant tag kept on hub order only")
	}

	// tenants are checked before anything is written
	tenants := make(map[uuid.UUID]*models.Store, len(groups))
	for _, group := range groups {
		tenant, err := storeRepo.Get(ctx, group.TenantID)
		if err != nil {
			return nil, err
		}
		tenants[group.TenantID] = tenant
	}

	first, err := repo.ClaimDistribution(ctx, hub.ID, d.now())
	if err != nil {
		return nil, err
	}
	ctx = d.logg.WithField(ctx, "first_delivery", first)

	status := finalStatus(hub)
	result := &Result{Dropped: dropped, Status: status, FirstDelivery: first, FeeTokens: hub.PlatformFeeTokens}

	kitchen := types.TenantStatusMap{}
	for k, v := range hub.ItemsStatusByTenant {
		kitchen[k] = v
	}

	for _, group := range groups {
		sub, err := d.writeSubOrder(ctx, tx, hub, group, tenants[group.TenantID], status)
		if err != nil {
			return nil, err
		}
		result.SubOrders = append(result.SubOrders, *sub)

		if _, ok := kitchen[group.TenantID.String()]; !ok {
			kitchen[group.TenantID.String()] = string(enums.KitchenStatusPending)
		}

		if !first {
			continue
		}
		for _, item := range group.Items {
			if err := d.decrementStock(ctx, tx, group.TenantID, item); err != nil {
				return nil, err
			}
		}
		if err := storeRepo.TouchLastTransaction(ctx, group.TenantID, d.now()); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{
		"status":                 status,
		"items_status_by_tenant": kitchen,
		"error":                  nil,
	}

	if first {
		fee := fees.ComputeFee(hub.TotalAmount, schedule)
		if fee > 0 {
			if err := d.ledger.Debit(ctx, tx, hub.StoreID, fee, feeReference(hub.ID)); err != nil {
				return nil, err
			}
		}
		result.FeeTokens = fee
		updates["platform_fee_tokens"] = fee

		if hub.CustomerID != nil {
			if err := d.loyalty.Apply(ctx, tx, *hub.CustomerID, hub.PointsEarned, hub.PointsRedeemed); err != nil {
				return nil, err
			}
		}
		if err := storeRepo.TouchLastTransaction(ctx, hub.StoreID, d.now()); err != nil {
			return nil, err
		}
		if err := d.applyTable(ctx, tx, hub); err != nil {
			return nil, err
		}
	}

	if err := repo.Update(ctx, hub.ID, updates); err != nil {
		return nil, err
	}

	hub.Status = status
	hub.ItemsStatusByTenant = kitchen
	hub.PlatformFeeTokens = result.FeeTokens
	hub.Error = nil

	d.logg.Info(d.logg.WithFields(ctx, map[string]any{
		"tenants":    len(result.SubOrders),
		"dropped":    len(dropped),
		"fee_tokens": result.FeeTokens,
		"status":     status,
	}), "hub order distributed")
	return result, nil
}

func (d *Distributor) writeSubOrder(ctx context.Context, tx *gorm.DB, hub *models.Transaction, group checkout.TenantGroup, tenant *models.Store, status enums.TransactionStatus) (*models.Transaction, error) {
	repo := d.repo.WithTx(tx)
	subID := SubOrderID(hub.ID, group.TenantID)

	existing, err := repo.Find(ctx, subID)
	if err != nil {
		return nil, err
	}

	receipt := int64(0)
	createdAt := time.Time{}
	if existing != nil {
		receipt = existing.ReceiptNumber
		createdAt = existing.CreatedAt
	} else {
		receipt, err = d.receipts.Next(ctx, tx, tenant.ID)
		if err != nil {
			return nil, err
		}
	}

	parent := hub.ID
	sub := &models.Transaction{
		ID:                  subID,
		StoreID:             tenant.ID,
		ReceiptNumber:       receipt,
		CustomerID:          hub.CustomerID,
		CustomerName:        hub.CustomerName,
		Items:               group.Items,
		Subtotal:            group.Subtotal,
		TotalAmount:         group.Subtotal,
		PaymentMethod:       hub.PaymentMethod,
		StaffID:             hub.StaffID,
		Status:              status,
		ParentTransactionID: &parent,
		TableID:             hub.TableID,
		IsFromCatalog:       hub.IsFromCatalog,
		CreatedAt:           createdAt,
	}
	if err := repo.UpsertSubOrder(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (d *Distributor) decrementStock(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, item types.OrderItem) error {
	productID, err := uuid.Parse(strings.TrimSpace(item.ProductID))
	if err != nil {
		d.logg.Warn(d.logg.WithField(ctx, "product_id", item.ProductID), "cart item has no catalog product, stock untouched")
		return nil
	}
	return d.inventory.Decrement(ctx, tx, tenantID, productID, item.Quantity)
}

// applyTable occupies the table for a catalog order paid later and clears it
// for everything else.
func (d *Distributor) applyTable(ctx context.Context, tx *gorm.DB, hub *models.Transaction) error {
	if hub.TableID == nil {
		return nil
	}
	if !isDeferred(hub) {
		return d.tables.Clear(ctx, tx, *hub.TableID)
	}
	return d.tables.Occupy(ctx, tx, *hub.TableID, types.TableOrderSnapshot{
		TransactionID: hub.ID.String(),
		ReceiptNumber: hub.ReceiptNumber,
		CustomerName:  hub.CustomerName,
		Items:         hub.Items,
		TotalAmount:   hub.TotalAmount,
		PlacedAt:      hub.CreatedAt.UTC(),
	})
}

// isDeferred reports a catalog self-order that is settled at the cashier later.
func isDeferred(hub *models.Transaction) bool {
	if !hub.IsFromCatalog {
		return false
	}
	method := strings.TrimSpace(hub.PaymentMethod)
	return method == "" || method == string(enums.PaymentMethodLater)
}

// finalStatus is the status a distribution run leaves on the hub. An order
// already paid at the cashier stays paid when distribution runs again.
func finalStatus(hub *models.Transaction) enums.TransactionStatus {
	if hub.Status == enums.TransactionStatusPaid {
		return enums.TransactionStatusPaid
	}
	if isDeferred(hub) {
		return enums.TransactionStatusUnpaid
	}
	return enums.TransactionStatusCompleted
}

func feeReference(hubID uuid.UUID) string {
	return "fee:" + hubID.String()
}

func refundReference(hubID uuid.UUID) string {
	return "refund:" + hubID.String()
}
