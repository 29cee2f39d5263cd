package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/pagination"
	"github.com/pujasera/pos-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createInput() CreateInput {
	payload := f.orderPayload()
	return CreateInput{
		StoreID:       f.hub.ID,
		CustomerName:  payload.Customer.Name,
		Items:         cartItems(payload.Cart),
		PaymentMethod: payload.PaymentMethod,
		StaffID:       payload.StaffID,
	}
}

func TestCreateHubTransactionEmitsEvent(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	created, err := f.svc.CreateHubTransaction(ctx, f.createInput())
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusProcessing, created.Status)
	assert.Equal(t, int64(1), created.ReceiptNumber)
	assert.Equal(t, 25000.0, created.TotalAmount)

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Where("aggregate_id = ?", created.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventTransactionCreated, events[0].EventType)

	// nothing distributed until the trigger settles it
	assert.Equal(t, int64(10), f.stock(t, f.productA.ID))
	assert.EqualValues(t, 1, f.countTransactions(t))
}

func TestCreateHubTransactionWithClientIDIsIdempotent(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	id := uuid.New()
	in := f.createInput()
	in.ID = &id

	first, err := f.svc.CreateHubTransaction(ctx, in)
	require.NoError(t, err)
	second, err := f.svc.CreateHubTransaction(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ReceiptNumber, second.ReceiptNumber)
	assert.EqualValues(t, 1, f.countTransactions(t))
}

func TestSettleDistributesOnce(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	created, err := f.svc.CreateHubTransaction(ctx, f.createInput())
	require.NoError(t, err)

	result, err := f.svc.Settle(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, result.FirstDelivery)
	assert.InDelta(t, 0.5, result.FeeTokens, 1e-9)
	assert.Len(t, result.SubOrders, 2)

	again, err := f.svc.Settle(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, again.FirstDelivery)
	assert.InDelta(t, 0.5, again.FeeTokens, 1e-9)

	assert.InDelta(t, 9.5, f.store(t, f.hub.ID).PradanaTokenBalance, 1e-9)
	assert.Equal(t, int64(8), f.stock(t, f.productA.ID))
	assert.EqualValues(t, 3, f.countTransactions(t))

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, got.Status)
	assert.Len(t, got.SubOrders, 2)
}

func TestSettleFailureMarksHubFailed(t *testing.T) {
	f := newFixture(t, 0.1)
	ctx := context.Background()

	created, err := f.svc.CreateHubTransaction(ctx, f.createInput())
	require.NoError(t, err)

	_, err = f.svc.Settle(ctx, created.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientBalance))

	hub, err := f.repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusFailed, hub.Status)
	require.NotNil(t, hub.Error)
	assert.Contains(t, *hub.Error, "insufficient token balance")
	assert.Nil(t, hub.DistributedAt)

	// topping up and settling again recovers the order
	require.NoError(t, f.conn.Model(&models.Store{}).Where("id = ?", f.hub.ID).Update("pradana_token_balance", 5).Error)
	_, err = f.svc.Settle(ctx, created.ID)
	require.NoError(t, err)
	hub, err = f.repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, hub.Status)
	assert.Nil(t, hub.Error)
}

func TestSettleMissingTransaction(t *testing.T) {
	f := newFixture(t, 10)
	_, err := f.svc.Settle(context.Background(), uuid.New())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestCancelReversesSettlement(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	created, err := f.svc.CreateHubTransaction(ctx, f.createInput())
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, created.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, created.ID, "customer left")
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCancelled, cancelled.Status)
	for _, sub := range cancelled.SubOrders {
		assert.Equal(t, enums.TransactionStatusCancelled, sub.Status)
	}
	assert.InDelta(t, 10.0, f.store(t, f.hub.ID).PradanaTokenBalance, 1e-9)
	assert.Equal(t, int64(10), f.stock(t, f.productA.ID))
	assert.Equal(t, int64(10), f.stock(t, f.productB.ID))

	// second cancel changes nothing
	_, err = f.svc.Cancel(ctx, created.ID, "again")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, f.store(t, f.hub.ID).PradanaTokenBalance, 1e-9)

	_, err = f.svc.Settle(ctx, created.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestCancelRejectsSubOrder(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	meta := jobs.Meta{ID: uuid.New()}
	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, f.orderPayload()))

	subID := SubOrderID(HubOrderID(meta.ID, nil), f.tenantA.ID)
	_, err := f.svc.Cancel(ctx, subID, "wrong record")
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func occupiedTable(t *testing.T, f *fixture, virtual bool) *models.Table {
	t.Helper()
	ctx := context.Background()
	table, err := f.tables.Create(ctx, f.hub.ID, "Meja 4", virtual)
	require.NoError(t, err)
	require.NoError(t, f.tables.Occupy(ctx, f.conn, table.ID, types.TableOrderSnapshot{
		TransactionID: uuid.NewString(),
		ReceiptNumber: 99,
		PlacedAt:      time.Now().UTC(),
	}))
	return table
}

func TestSettledOrderClearsPhysicalTable(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	table := occupiedTable(t, f, false)

	payload := f.orderPayload()
	payload.TableID = &table.ID
	require.NoError(t, f.handler.HandleOrderCreate(ctx, jobs.Meta{ID: uuid.New()}, payload))

	got, err := f.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusAvailable, got.Status)
	assert.Nil(t, got.CurrentOrder)
}

func TestSettledOrderDeletesVirtualTable(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	table := occupiedTable(t, f, true)

	payload := f.orderPayload()
	payload.TableID = &table.ID
	require.NoError(t, f.handler.HandleOrderCreate(ctx, jobs.Meta{ID: uuid.New()}, payload))

	_, err := f.tables.Get(ctx, table.ID)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDeferredCatalogOrderOccupiesTable(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	table, err := f.tables.Create(ctx, f.hub.ID, "Meja 7", false)
	require.NoError(t, err)

	meta := jobs.Meta{ID: uuid.New()}
	payload := f.orderPayload()
	payload.TableID = &table.ID
	payload.IsFromCatalog = true
	payload.PaymentMethod = string(enums.PaymentMethodLater)
	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, payload))

	hub, err := f.repo.Get(ctx, HubOrderID(meta.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusUnpaid, hub.Status)

	got, err := f.tables.Get(ctx, table.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusOccupied, got.Status)
	require.NotNil(t, got.CurrentOrder)
	assert.Equal(t, hub.ID.String(), got.CurrentOrder.TransactionID)
	assert.Equal(t, hub.ReceiptNumber, got.CurrentOrder.ReceiptNumber)
}

func TestListByStorePagesNewestFirst(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	base := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	ids := make([]uuid.UUID, 0, 3)
	for i := 0; i < 3; i++ {
		created, err := f.svc.CreateHubTransaction(ctx, f.createInput())
		require.NoError(t, err)
		require.NoError(t, f.conn.Model(&models.Transaction{}).Where("id = ?", created.ID).
			Update("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
		ids = append(ids, created.ID)
	}

	first, err := f.svc.ListByStore(ctx, f.hub.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Transactions, 2)
	assert.Equal(t, ids[2], first.Transactions[0].ID)
	assert.Equal(t, ids[1], first.Transactions[1].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := f.svc.ListByStore(ctx, f.hub.ID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Transactions, 1)
	assert.Equal(t, ids[0], second.Transactions[0].ID)
	assert.Empty(t, second.NextCursor)
}

func TestListByStoreRejectsBadCursor(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.svc.ListByStore(context.Background(), f.hub.ID, pagination.Params{Cursor: "%%%"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestCreateHubTransactionRejectsUnknownPaymentMethod(t *testing.T) {
	f := newFixture(t, 10)
	in := f.createInput()
	in.PaymentMethod = "ach"

	_, err := f.svc.CreateHubTransaction(context.Background(), in)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
	assert.EqualValues(t, 0, f.countTransactions(t))
}

func (f *fixture) deferredOrder(t *testing.T, virtual bool) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	table, err := f.tables.Create(ctx, f.hub.ID, "Meja 3", virtual)
	require.NoError(t, err)

	meta := jobs.Meta{ID: uuid.New()}
	payload := f.orderPayload()
	payload.TableID = &table.ID
	payload.IsFromCatalog = true
	payload.PaymentMethod = string(enums.PaymentMethodLater)
	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, payload))
	return HubOrderID(meta.ID, nil), table.ID
}

func TestPayDeferredOrderReleasesTable(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	hubID, tableID := f.deferredOrder(t, false)

	dto, err := f.svc.Pay(ctx, hubID, "qris")
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusPaid, dto.Status)
	assert.Equal(t, "qris", dto.PaymentMethod)
	require.Len(t, dto.SubOrders, 2)
	for _, sub := range dto.SubOrders {
		assert.Equal(t, enums.TransactionStatusPaid, sub.Status)
	}

	table, err := f.tables.Get(ctx, tableID)
	require.NoError(t, err)
	assert.Equal(t, enums.TableStatusAwaitingCleanup, table.Status)

	// paying twice is harmless and settling again keeps the order paid
	_, err = f.svc.Pay(ctx, hubID, "qris")
	require.NoError(t, err)
	_, err = f.svc.Settle(ctx, hubID)
	require.NoError(t, err)
	hub, err := f.repo.Get(ctx, hubID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusPaid, hub.Status)
	for _, sub := range f.subOrdersByStore(t, hubID) {
		assert.Equal(t, enums.TransactionStatusPaid, sub.Status)
	}
}

func TestPayDeferredOrderDeletesVirtualTable(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	hubID, tableID := f.deferredOrder(t, true)

	_, err := f.svc.Pay(ctx, hubID, "cash")
	require.NoError(t, err)

	_, err = f.tables.Get(ctx, tableID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestPayRejectsSettledOrderAndDeferredMethod(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()

	meta := jobs.Meta{ID: uuid.New()}
	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, f.orderPayload()))
	_, err := f.svc.Pay(ctx, HubOrderID(meta.ID, nil), "cash")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	hubID, _ := f.deferredOrder(t, false)
	_, err = f.svc.Pay(ctx, hubID, "later")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestUpdateKitchenStatusMovesForward(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	meta := jobs.Meta{ID: uuid.New()}
	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, f.orderPayload()))
	hubID := HubOrderID(meta.ID, nil)

	dto, err := f.svc.UpdateKitchenStatus(ctx, hubID, f.tenantA.ID, enums.KitchenStatusReady)
	require.NoError(t, err)
	assert.Equal(t, string(enums.KitchenStatusReady), dto.ItemsStatusByTenant[f.tenantA.ID.String()])
	assert.Equal(t, string(enums.KitchenStatusPending), dto.ItemsStatusByTenant[f.tenantB.ID.String()])

	_, err = f.svc.UpdateKitchenStatus(ctx, hubID, f.tenantA.ID, enums.KitchenStatusPending)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.UpdateKitchenStatus(ctx, hubID, uuid.New(), enums.KitchenStatusReady)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.UpdateKitchenStatus(ctx, hubID, f.tenantB.ID, enums.KitchenStatus("cooking"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	// a settlement re-run keeps reported progress
	_, err = f.svc.Settle(ctx, hubID)
	require.NoError(t, err)
	hub, err := f.repo.Get(ctx, hubID)
	require.NoError(t, err)
	assert.Equal(t, string(enums.KitchenStatusReady), hub.ItemsStatusByTenant[f.tenantA.ID.String()])
}
