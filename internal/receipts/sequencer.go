package receipts

import (
	"context"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

// Sequencer hands out per-store receipt numbers. The increment holds the row
// lock until the caller's transaction ends, so two open units on the same
// store can never read the same counter value. Aborted units leave gaps.
type Sequencer struct{}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next increments the store counter and returns the new value.
func (s *Sequencer) Next(ctx context.Context, tx *gorm.DB, storeID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}

	res := tx.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		UpdateColumn("transaction_counter", gorm.Expr("transaction_counter + 1"))
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment receipt counter")
	}
	if res.RowsAffected == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "store not found").
			WithDetails(map[string]any{"store_id": storeID.String()})
	}

	var store models.Store
	if err := tx.WithContext(ctx).
		Select("id", "transaction_counter").
		Where("id = ?", storeID).
		First(&store).Error; err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read receipt counter")
	}
	return store.TransactionCounter, nil
}
