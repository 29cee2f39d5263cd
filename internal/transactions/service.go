package transactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/internal/checkout"
	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/outbox"
	"github.com/pujasera/pos-backend/pkg/outbox/payloads"
	"github.com/pujasera/pos-backend/pkg/pagination"
	"github.com/pujasera/pos-backend/pkg/types"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ServiceParams wires the transaction service.
type ServiceParams struct {
	TxRunner    txRunner
	Distributor *Distributor
	Settings    fees.ScheduleSource
	Outbox      eventEmitter
	Logger      *logger.Logger
}

// Service owns hub orders written through the API and their settlement.
type Service struct {
	tx          txRunner
	distributor *Distributor
	repo        *Repository
	settings    fees.ScheduleSource
	outbox      eventEmitter
	logg        *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.TxRunner == nil:
		return nil, fmt.Errorf("tx runner required")
	case params.Distributor == nil:
		return nil, fmt.Errorf("distributor required")
	case params.Settings == nil:
		return nil, fmt.Errorf("settings source required")
	case params.Outbox == nil:
		return nil, fmt.Errorf("outbox emitter required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		tx:          params.TxRunner,
		distributor: params.Distributor,
		repo:        params.Distributor.repo,
		settings:    params.Settings,
		outbox:      params.Outbox,
		logg:        params.Logger,
	}, nil
}

// CreateHubTransaction stores a hub order with its hub receipt and emits
// transaction_created in the same unit. Distribution happens in Settle. A
// repeated create with the same client id returns the stored record.
func (s *Service) CreateHubTransaction(ctx context.Context, in CreateInput) (*TransactionDTO, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var created *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if in.ID != nil {
			existing, err := repo.Find(ctx, *in.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				if existing.StoreID != in.StoreID || !existing.IsHub() {
					return pkgerrors.New(pkgerrors.CodeConflict, "transaction id already used")
				}
				created = existing
				return nil
			}
		}

		if _, err := s.distributor.stores.WithTx(tx).Get(ctx, in.StoreID); err != nil {
			return err
		}
		receipt, err := s.distributor.receipts.Next(ctx, tx, in.StoreID)
		if err != nil {
			return err
		}

		id := uuid.New()
		if in.ID != nil {
			id = *in.ID
		}
		subtotal := checkout.Subtotal(in.Items)
		hub := &models.Transaction{
			ID:               id,
			StoreID:          in.StoreID,
			ReceiptNumber:    receipt,
			CustomerID:       in.CustomerID,
			CustomerName:     in.CustomerName,
			Items:            in.Items,
			Subtotal:         subtotal,
			TaxAmount:        in.TaxAmount,
			ServiceFeeAmount: in.ServiceFeeAmount,
			DiscountAmount:   in.DiscountAmount,
			TotalAmount:      checkout.ComputeTotal(subtotal, in.DiscountAmount, in.TaxAmount, in.ServiceFeeAmount),
			PaymentMethod:    in.PaymentMethod,
			StaffID:          in.StaffID,
			PointsEarned:     in.PointsEarned,
			PointsRedeemed:   in.PointsRedeemed,
			Status:           enums.TransactionStatusProcessing,
			TableID:          in.TableID,
			IsFromCatalog:    in.IsFromCatalog,
		}
		if err := repo.Create(ctx, hub); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionCreated,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   hub.ID,
			Actor:         &outbox.ActorRef{Kind: "cashier", ID: hub.StaffID, StoreID: &hub.StoreID},
			Data: payloads.TransactionCreatedEvent{
				TransactionID: hub.ID,
				StoreID:       hub.StoreID,
			},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit transaction_created")
		}
		created = hub
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(created)
	return &dto, nil
}

// Settle distributes a hub order written by CreateHubTransaction. A failed
// run marks the hub failed with the error text; redeliveries of an already
// distributed hub only refresh its sub-orders.
func (s *Service) Settle(ctx context.Context, id uuid.UUID) (*Result, error) {
	ctx = s.logg.WithTransactionID(ctx, id.String())

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform settings")
	}

	var (
		result *Result
		loaded bool
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		hub, err := s.repo.WithTx(tx).GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		loaded = true
		result, err = s.distributor.Distribute(ctx, tx, hub, settings.Schedule)
		return err
	})
	if err != nil {
		if loaded {
			if markErr := s.repo.MarkFailed(ctx, id, err.Error()); markErr != nil {
				s.logg.Error(ctx, "failed to record settlement failure", markErr)
			}
		}
		return nil, err
	}
	return result, nil
}

// Cancel reverses a hub order: fee credited back, stock restored, loyalty
// reversed, table cleared, and hub plus sub-orders marked cancelled.
// Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*TransactionDTO, error) {
	ctx = s.logg.WithTransactionID(ctx, id.String())
	d := s.distributor

	var hub *models.Transaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		hub, err = repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !hub.IsHub() {
			return pkgerrors.New(pkgerrors.CodeValidation, "only hub orders can be cancelled")
		}
		if hub.Status == enums.TransactionStatusCancelled {
			return nil
		}

		if hub.DistributedAt != nil {
			if hub.PlatformFeeTokens > 0 {
				if err := d.ledger.Credit(ctx, tx, hub.StoreID, hub.PlatformFeeTokens, refundReference(hub.ID)); err != nil {
					return err
				}
			}
			subs, err := repo.ListSubOrders(ctx, hub.ID)
			if err != nil {
				return err
			}
			for _, sub := range subs {
				for _, item := range sub.Items {
					productID, err := uuid.Parse(item.ProductID)
					if err != nil {
						continue
					}
					if err := d.inventory.Increment(ctx, tx, sub.StoreID, productID, item.Quantity); err != nil {
						return err
					}
				}
			}
			if hub.CustomerID != nil {
				if err := d.loyalty.Reverse(ctx, tx, *hub.CustomerID, hub.PointsEarned, hub.PointsRedeemed); err != nil {
					return err
				}
			}
			if hub.TableID != nil {
				if err := d.tables.Clear(ctx, tx, *hub.TableID); err != nil {
					return err
				}
			}
		}

		if err := repo.MarkCancelled(ctx, hub.ID); err != nil {
			return err
		}
		hub.Status = enums.TransactionStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "reason", reason), "transaction cancelled")
	return s.Get(ctx, hub.ID)
}

// Pay settles an unpaid (pay later) hub order at the cashier: hub and
// sub-orders become paid with the given method and the table is released.
// Paying an already paid order is a no-op.
func (s *Service) Pay(ctx context.Context, id uuid.UUID, method string) (*TransactionDTO, error) {
	ctx = s.logg.WithTransactionID(ctx, id.String())

	pm, err := enums.ParsePaymentMethod(strings.TrimSpace(method))
	if err != nil || pm == enums.PaymentMethodLater {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a settling payment method is required").
			WithDetails(map[string]any{"paymentMethod": method})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		hub, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !hub.IsHub() {
			return pkgerrors.New(pkgerrors.CodeValidation, "only hub orders can be paid")
		}
		switch hub.Status {
		case enums.TransactionStatusPaid:
			return nil
		case enums.TransactionStatusUnpaid:
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only unpaid orders can be paid").
				WithDetails(map[string]any{"status": hub.Status})
		}

		if err := repo.MarkPaid(ctx, hub.ID, pm.String()); err != nil {
			return err
		}
		if hub.TableID != nil {
			return s.distributor.tables.Release(ctx, tx, *hub.TableID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "payment_method", pm.String()), "transaction paid")
	return s.Get(ctx, id)
}

// UpdateKitchenStatus records a tenant's preparation progress on a hub
// order. Only tenants with a sub-order may report, and status never moves back.
func (s *Service) UpdateKitchenStatus(ctx context.Context, id, tenantID uuid.UUID, status enums.KitchenStatus) (*TransactionDTO, error) {
	ctx = s.logg.WithTransactionID(ctx, id.String())
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown kitchen status").
			WithDetails(map[string]any{"status": status})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		hub, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !hub.IsHub() {
			return pkgerrors.New(pkgerrors.CodeValidation, "kitchen status is tracked on hub orders")
		}
		if hub.Status == enums.TransactionStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is cancelled")
		}

		key := tenantID.String()
		current, ok := hub.ItemsStatusByTenant[key]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "tenant has no items on this order").
				WithDetails(map[string]any{"tenant_id": key})
		}
		if !status.Follows(enums.KitchenStatus(current)) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "kitchen status cannot move back").
				WithDetails(map[string]any{"from": current, "to": status})
		}

		kitchen := make(types.TenantStatusMap, len(hub.ItemsStatusByTenant))
		for k, v := range hub.ItemsStatusByTenant {
			kitchen[k] = v
		}
		kitchen[key] = string(status)
		return repo.Update(ctx, hub.ID, map[string]any{"items_status_by_tenant": kitchen})
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"tenant_id": tenantID.String(), "kitchen_status": status}), "kitchen status updated")
	return s.Get(ctx, id)
}

// Get returns a transaction; hub orders include their sub-orders.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(txn)
	if txn.IsHub() {
		subs, err := s.ListSubOrders(ctx, id)
		if err != nil {
			return nil, err
		}
		dto.SubOrders = subs
	}
	return &dto, nil
}

// ListSubOrders returns the tenant sub-orders of a hub order.
func (s *Service) ListSubOrders(ctx context.Context, hubID uuid.UUID) ([]TransactionDTO, error) {
	subs, err := s.repo.ListSubOrders(ctx, hubID)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionDTO, 0, len(subs))
	for i := range subs {
		out = append(out, FromModel(&subs[i]))
	}
	return out, nil
}

// ListResult is one page of a store's transaction history.
type ListResult struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"nextCursor,omitempty"`
}

// ListByStore pages through a store's transactions, newest first.
func (s *Service) ListByStore(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*ListResult, error) {
	rows, next, err := s.repo.ListByStore(ctx, storeID, params)
	if err != nil {
		return nil, err
	}
	out := &ListResult{Transactions: make([]TransactionDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Transactions = append(out.Transactions, FromModel(&rows[i]))
	}
	return out, nil
}
