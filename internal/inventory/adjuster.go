package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

// Adjuster applies stock movements inside the caller's transaction.
type Adjuster struct{}

func NewAdjuster() *Adjuster {
	return &Adjuster{}
}

// Decrement removes qty units from a tenant product. Untracked products are left alone.
func (a *Adjuster) Decrement(ctx context.Context, tx *gorm.DB, storeID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product, err := a.load(ctx, tx, storeID, productID)
	if err != nil {
		return err
	}
	if !product.TrackStock {
		return nil
	}

	res := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ? AND stock >= ?", productID, storeID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
			WithDetails(map[string]any{"product_id": productID.String(), "requested": qty})
	}
	return nil
}

// Increment returns qty units to a tenant product, used when an order is cancelled.
func (a *Adjuster) Increment(ctx context.Context, tx *gorm.DB, storeID, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product, err := a.load(ctx, tx, storeID, productID)
	if err != nil {
		return err
	}
	if !product.TrackStock {
		return nil
	}

	if err := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ?", productID, storeID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty)).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
	}
	return nil
}

func (a *Adjuster) load(ctx context.Context, tx *gorm.DB, storeID, productID uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	var product models.Product
	err := tx.WithContext(ctx).
		Where("id = ? AND store_id = ?", productID, storeID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithDetails(map[string]any{"product_id": productID.String(), "store_id": storeID.String()})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}
