package tokens

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"gorm.io/gorm"
)

// Ledger mutates store token balances. Every movement runs inside the caller's
// transaction and leaves an entry in token_ledger_entries.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Debit subtracts amount from the store balance. The balance check and the
// write are one conditional UPDATE, so concurrent debits can never commit a
// negative balance.
func (l *Ledger) Debit(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, amount float64, reference string) error {
	if err := validateMovement(tx, amount, reference); err != nil {
		return err
	}

	res := tx.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ? AND pradana_token_balance >= ?", storeID, amount).
		UpdateColumn("pradana_token_balance", gorm.Expr("pradana_token_balance - ?", amount))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "debit token balance")
	}
	if res.RowsAffected == 0 {
		balance, err := l.balance(ctx, tx, storeID)
		if err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient token balance").
			WithDetails(map[string]any{"store_id": storeID.String(), "balance": balance, "required": amount})
	}

	return l.record(ctx, tx, storeID, enums.TokenEntryDebit, amount, reference)
}

// Credit adds amount to the store balance unconditionally.
func (l *Ledger) Credit(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, amount float64, reference string) error {
	if err := validateMovement(tx, amount, reference); err != nil {
		return err
	}

	res := tx.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		UpdateColumn("pradana_token_balance", gorm.Expr("pradana_token_balance + ?", amount))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "credit token balance")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}

	return l.record(ctx, tx, storeID, enums.TokenEntryCredit, amount, reference)
}

// Balance reads the committed balance of a store.
func (l *Ledger) Balance(ctx context.Context, db *gorm.DB, storeID uuid.UUID) (float64, error) {
	return l.balance(ctx, db, storeID)
}

// Entries lists the ledger movements for a store, oldest first.
func (l *Ledger) Entries(ctx context.Context, db *gorm.DB, storeID uuid.UUID) ([]models.TokenLedgerEntry, error) {
	var entries []models.TokenLedgerEntry
	if err := db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (l *Ledger) balance(ctx context.Context, db *gorm.DB, storeID uuid.UUID) (float64, error) {
	var store models.Store
	err := db.WithContext(ctx).
		Select("id", "pradana_token_balance").
		Where("id = ?", storeID).
		First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load token balance")
	}
	return store.PradanaTokenBalance, nil
}

func (l *Ledger) record(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, kind enums.TokenEntryKind, amount float64, reference string) error {
	entry := models.TokenLedgerEntry{
		ID:        uuid.New(),
		StoreID:   storeID,
		Kind:      kind,
		Amount:    amount,
		Reference: reference,
	}
	if err := tx.WithContext(ctx).Create(&entry).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("record token %s", kind))
	}
	return nil
}

func validateMovement(tx *gorm.DB, amount float64, reference string) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "token amount must be positive")
	}
	if reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "token reference required")
	}
	return nil
}
