package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

// revenueStatuses are the settled statuses counted as revenue.
var revenueStatuses = []enums.TransactionStatus{
	enums.TransactionStatusCompleted,
	enums.TransactionStatusPaid,
}

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
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

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(store).Error
}

// Get loads a store by id; a missing row is NOT_FOUND.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found").WithDetails(map[string]any{"store_id": id})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return &store, nil
}

// GetBySourceJob loads the store created by a registration job; NOT_FOUND
// when the job has not created one yet.
func (r *Repository) GetBySourceJob(ctx context.Context, jobID uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("source_job_id = ?", jobID).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found").WithDetails(map[string]any{"source_job_id": jobID})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store by job")
	}
	return &store, nil
}

// ListByGroupSlug returns every store belonging to a pujasera group, hub first.
func (r *Repository) ListByGroupSlug(ctx context.Context, slug string) ([]models.Store, error) {
	var stores []models.Store
	err := r.db.WithContext(ctx).
		Where("pujasera_group_slug = ?", slug).
		Order("CASE WHEN kind = '"+string(enums.StoreKindHub)+"' THEN 0 ELSE 1 END").
		Order("name ASC").
		Find(&stores).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list group stores")
	}
	return stores, nil
}

// DailyRevenue sums settled orders per store for [from, to). Every store is
// returned, including those without orders in the window.
func (r *Repository) DailyRevenue(ctx context.Context, from, to time.Time) ([]RevenueRow, error) {
	var rows []RevenueRow
	err := r.db.WithContext(ctx).
		Table("stores AS s").
		Select("s.id AS store_id, s.name AS store_name, COUNT(t.id) AS orders, COALESCE(SUM(t.total_amount), 0) AS revenue").
		Joins("LEFT JOIN transactions AS t ON t.store_id = s.id AND t.status IN ? AND t.created_at >= ? AND t.created_at < ?",
			revenueStatuses, from.UTC(), to.UTC()).
		Group("s.id, s.name").
		Order("s.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate daily revenue")
	}
	return rows, nil
}

// AdminContacts lists the store's administrators that have a WhatsApp number.
func (r *Repository) AdminContacts(ctx context.Context, storeID uuid.UUID) ([]Contact, error) {
	var contacts []Contact
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("id, name, whatsapp").
		Where("store_id = ? AND role = ? AND whatsapp IS NOT NULL AND whatsapp <> ''", storeID, enums.UserRoleAdmin).
		Order("name ASC").
		Scan(&contacts).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admin contacts")
	}
	return contacts, nil
}

// ListIdleSince returns stores reachable over WhatsApp that have not sold
// anything since cutoff and were not re-engaged since cutoff either.
func (r *Repository) ListIdleSince(ctx context.Context, cutoff time.Time) ([]models.Store, error) {
	var stores []models.Store
	cutoff = cutoff.UTC()
	err := r.db.WithContext(ctx).
		Where("whatsapp IS NOT NULL AND whatsapp <> ''").
		Where("created_at < ?", cutoff).
		Where("last_transaction_at IS NULL OR last_transaction_at < ?", cutoff).
		Where("last_reengagement_sent_at IS NULL OR last_reengagement_sent_at < ?", cutoff).
		Order("created_at ASC").
		Find(&stores).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list idle stores")
	}
	return stores, nil
}

// MarkReengagementSent stamps the re-engagement guard.
func (r *Repository) MarkReengagementSent(ctx context.Context, storeID uuid.UUID, at time.Time) error {
	return r.stamp(ctx, storeID, "last_reengagement_sent_at", at)
}

// TouchLastTransaction records the latest sale time for idle detection.
func (r *Repository) TouchLastTransaction(ctx context.Context, storeID uuid.UUID, at time.Time) error {
	return r.stamp(ctx, storeID, "last_transaction_at", at)
}

func (r *Repository) stamp(ctx context.Context, storeID uuid.UUID, column string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		UpdateColumn(column, at.UTC())
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update store "+column)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	return nil
}
