package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// subOrderColumns are refreshed when a sub-order is written again. Receipt
// number and creation time are kept from the first write.
var subOrderColumns = []string{
	"items", "subtotal", "total_amount", "customer_id", "customer_name",
	"payment_method", "staff_id", "table_id", "is_from_catalog", "status", "updated_at",
}

// Repository persists hub orders and tenant sub-orders.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Get loads a transaction; a missing row is NOT_FOUND.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return r.get(ctx, r.db, id)
}

// GetForUpdate loads a transaction and locks its row until the unit ends.
func (r *Repository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) get(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	err := db.WithContext(ctx).Where("id = ?", id).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found").
			WithDetails(map[string]any{"transaction_id": id.String()})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return &txn, nil
}

// Find is Get without the NOT_FOUND error: a missing row yields nil, nil.
func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, err := r.Get(ctx, id)
	if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		return nil, nil
	}
	return txn, err
}

// Create inserts a new transaction row.
func (r *Repository) Create(ctx context.Context, txn *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert transaction")
	}
	return nil
}

// UpsertSubOrder writes a tenant sub-order, refreshing an existing row with the same id.
func (r *Repository) UpsertSubOrder(ctx context.Context, sub *models.Transaction) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(subOrderColumns),
		}).
		Create(sub).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert sub-order")
	}
	return nil
}

// ListSubOrders returns the tenant sub-orders of a hub order, ordered by tenant.
func (r *Repository) ListSubOrders(ctx context.Context, hubID uuid.UUID) ([]models.Transaction, error) {
	var subs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("parent_transaction_id = ?", hubID).
		Order("store_id ASC").
		Find(&subs).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sub-orders")
	}
	return subs, nil
}

// ClaimDistribution stamps distributed_at on a hub that has never been
// distributed. It reports false when an earlier delivery already did.
func (r *Repository) ClaimDistribution(ctx context.Context, hubID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND distributed_at IS NULL", hubID).
		UpdateColumn("distributed_at", at.UTC())
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "claim distribution")
	}
	return res.RowsAffected == 1, nil
}

// Update applies column updates to one transaction.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update transaction")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
	}
	return nil
}

// MarkFailed records a distribution failure on a hub that was never
// distributed and is not cancelled.
func (r *Repository) MarkFailed(ctx context.Context, hubID uuid.UUID, reason string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND distributed_at IS NULL AND status <> ?", hubID, enums.TransactionStatusCancelled).
		Updates(map[string]any{
			"status": enums.TransactionStatusFailed,
			"error":  reason,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark transaction failed")
	}
	return nil
}

// MarkCancelled cancels a hub order and all of its sub-orders.
func (r *Repository) MarkCancelled(ctx context.Context, hubID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? OR parent_transaction_id = ?", hubID, hubID).
		Update("status", enums.TransactionStatusCancelled).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel transaction")
	}
	return nil
}

// MarkPaid moves an unpaid hub order and its sub-orders to paid. A non-empty
// method replaces the recorded payment method.
func (r *Repository) MarkPaid(ctx context.Context, hubID uuid.UUID, method string) error {
	updates := map[string]any{"status": enums.TransactionStatusPaid}
	if method != "" {
		updates["payment_method"] = method
	}
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("(id = ? OR parent_transaction_id = ?) AND status = ?", hubID, hubID, enums.TransactionStatusUnpaid).
		Updates(updates).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark transaction paid")
	}
	return nil
}

// ListByStore returns one page of a store's transactions, newest first.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) ([]models.Transaction, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	q := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if cursor != nil {
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var txns []models.Transaction
	err = q.Order("created_at DESC").Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&txns).Error
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	page, next := pagination.Trim(txns, params.Limit, func(t models.Transaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID}
	})
	return page, next, nil
}
