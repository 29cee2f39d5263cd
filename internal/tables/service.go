package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/types"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service drives table status. Methods taking a *gorm.DB join the caller's unit.
type Service struct {
	tx txRunner
	db *gorm.DB
}

func NewService(tx txRunner, db *gorm.DB) (*Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	return &Service{tx: tx, db: db}, nil
}

// Create registers a table under a hub store.
func (s *Service) Create(ctx context.Context, storeID uuid.UUID, name string, virtual bool) (*models.Table, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "table name required")
	}
	table := &models.Table{
		ID:        uuid.New(),
		StoreID:   storeID,
		Name:      name,
		Status:    enums.TableStatusAvailable,
		IsVirtual: virtual,
	}
	if err := s.db.WithContext(ctx).Create(table).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create table")
	}
	return table, nil
}

// Get loads a table by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Table, error) {
	return s.find(ctx, s.db, id)
}

// Occupy attaches the order snapshot and marks the table occupied.
func (s *Service) Occupy(ctx context.Context, tx *gorm.DB, id uuid.UUID, snapshot types.TableOrderSnapshot) error {
	table, err := s.find(ctx, tx, id)
	if err != nil {
		return err
	}
	if !CanTransition(table.Status, enums.TableStatusOccupied) {
		return transitionError(table, enums.TableStatusOccupied)
	}
	return s.update(ctx, tx, id, map[string]any{
		"status":        enums.TableStatusOccupied,
		"current_order": snapshot,
	})
}

// Clear resets a table once its order is settled: virtual tables are deleted,
// physical ones return to available without an order. A missing table is not an error.
func (s *Service) Clear(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	table, err := s.find(ctx, tx, id)
	if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if table.IsVirtual {
		if err := tx.WithContext(ctx).Where("id = ?", id).Delete(&models.Table{}).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete virtual table")
		}
		return nil
	}
	return s.update(ctx, tx, id, map[string]any{
		"status":        enums.TableStatusAvailable,
		"current_order": nil,
	})
}

// Release frees a table whose order has been paid: virtual tables are
// deleted, an occupied physical table moves to awaiting-cleanup with its
// snapshot kept until cleaned. Missing or already released tables are left alone.
func (s *Service) Release(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	table, err := s.find(ctx, tx, id)
	if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if table.IsVirtual {
		return s.Clear(ctx, tx, id)
	}
	if table.Status != enums.TableStatusOccupied {
		return nil
	}
	return s.update(ctx, tx, id, map[string]any{"status": enums.TableStatusAwaitingCleanup})
}

// Apply runs an operator action in its own unit and returns the resulting
// table, or nil when a virtual table was cleared away.
func (s *Service) Apply(ctx context.Context, id uuid.UUID, action Action) (*models.Table, error) {
	var result *models.Table
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		table, err := s.find(ctx, tx, id)
		if err != nil {
			return err
		}

		switch action {
		case ActionClear:
			if err := s.Clear(ctx, tx, id); err != nil {
				return err
			}
			if table.IsVirtual {
				return nil
			}
		case ActionReserve:
			if err := s.move(ctx, tx, table, enums.TableStatusReserved, false); err != nil {
				return err
			}
		case ActionRelease:
			if err := s.move(ctx, tx, table, enums.TableStatusAwaitingCleanup, false); err != nil {
				return err
			}
		case ActionClean:
			if table.Status != enums.TableStatusAwaitingCleanup {
				return transitionError(table, enums.TableStatusAvailable)
			}
			if err := s.move(ctx, tx, table, enums.TableStatusAvailable, true); err != nil {
				return err
			}
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown table action")
		}

		result, err = s.find(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) move(ctx context.Context, tx *gorm.DB, table *models.Table, to enums.TableStatus, dropOrder bool) error {
	if !CanTransition(table.Status, to) {
		return transitionError(table, to)
	}
	updates := map[string]any{"status": to}
	if dropOrder {
		updates["current_order"] = nil
	}
	return s.update(ctx, tx, table.ID, updates)
}

func (s *Service) update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	if err := tx.WithContext(ctx).
		Model(&models.Table{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update table")
	}
	return nil
}

func (s *Service) find(ctx context.Context, db *gorm.DB, id uuid.UUID) (*models.Table, error) {
	if db == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	var table models.Table
	err := db.WithContext(ctx).Where("id = ?", id).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "table not found").
			WithDetails(map[string]any{"table_id": id.String()})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load table")
	}
	return &table, nil
}

func transitionError(table *models.Table, to enums.TableStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("table cannot move from %s to %s", table.Status, to)).
		WithDetails(map[string]any{"table_id": table.ID.String(), "from": string(table.Status), "to": string(to)})
}
