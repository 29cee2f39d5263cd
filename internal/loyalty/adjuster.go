package loyalty

import (
	"context"
	"errors"
	"strings"

	"github.com/pujasera/pos-backend/pkg/db/models"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

// GuestCustomerID is the sentinel checkout sends for walk-in customers.
const GuestCustomerID = "guest"

// IsGuest reports whether the id refers to no loyalty member.
func IsGuest(customerID string) bool {
	id := strings.TrimSpace(customerID)
	return id == "" || strings.EqualFold(id, GuestCustomerID)
}

// Adjuster nets earned and redeemed points onto a customer record.
type Adjuster struct{}

func NewAdjuster() *Adjuster {
	return &Adjuster{}
}

// Apply adds earned-redeemed to the customer's balance in one conditional update.
func (a *Adjuster) Apply(ctx context.Context, tx *gorm.DB, customerID string, earned, redeemed int64) error {
	return a.adjust(ctx, tx, customerID, earned-redeemed)
}

// Reverse undoes a previous Apply with the same arguments.
func (a *Adjuster) Reverse(ctx context.Context, tx *gorm.DB, customerID string, earned, redeemed int64) error {
	return a.adjust(ctx, tx, customerID, redeemed-earned)
}

// Points returns the current balance of a customer.
func (a *Adjuster) Points(ctx context.Context, db *gorm.DB, customerID string) (int64, error) {
	var customer models.Customer
	err := db.WithContext(ctx).Where("id = ?", customerID).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer.LoyaltyPoints, nil
}

func (a *Adjuster) adjust(ctx context.Context, tx *gorm.DB, customerID string, net int64) error {
	if IsGuest(customerID) || net == 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}

	res := tx.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ? AND loyalty_points + ? >= 0", customerID, net).
		UpdateColumn("loyalty_points", gorm.Expr("loyalty_points + ?", net))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "adjust loyalty points")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	if _, err := a.Points(ctx, tx, customerID); err != nil {
		return err
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "insufficient loyalty points").
		WithDetails(map[string]any{"customer_id": customerID, "delta": net})
}
