package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

// Repository persists job queue entries.
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

// Create inserts a pending entry.
func (r *Repository) Create(ctx context.Context, entry *models.JobQueueEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = enums.JobStatusPending
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// Get loads an entry; a missing row is NOT_FOUND.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.JobQueueEntry, error) {
	var entry models.JobQueueEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "job not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load job")
	}
	return &entry, nil
}

// ListStalePending returns entries still pending since before cutoff, oldest first.
func (r *Repository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.JobQueueEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []models.JobQueueEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.JobStatusPending, cutoff.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale jobs")
	}
	return entries, nil
}

// MarkTerminal moves a pending entry to status. It reports false when the
// entry was no longer pending, so an entry never reaches two terminal states.
func (r *Repository) MarkTerminal(ctx context.Context, id uuid.UUID, status enums.JobStatus, errMsg *string, at time.Time) (bool, error) {
	if !status.IsTerminal() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "status is not terminal")
	}
	res := r.db.WithContext(ctx).
		Model(&models.JobQueueEntry{}).
		Where("id = ? AND status = ?", id, enums.JobStatusPending).
		Updates(map[string]any{
			"status":       status,
			"error":        errMsg,
			"processed_at": at.UTC(),
		})
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "mark job terminal")
	}
	return res.RowsAffected == 1, nil
}
