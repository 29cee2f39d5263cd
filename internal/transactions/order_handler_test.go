package transactions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCreateFansOutToTenants(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	meta := jobs.Meta{ID: uuid.New(), Type: enums.JobTypeOrderCreate}

	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, f.orderPayload()))

	hub, err := f.repo.Get(ctx, HubOrderID(meta.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, hub.Status)
	assert.Equal(t, 25000.0, hub.TotalAmount)
	assert.Equal(t, int64(1), hub.ReceiptNumber)
	assert.InDelta(t, 0.5, hub.PlatformFeeTokens, 1e-9)
	assert.NotNil(t, hub.DistributedAt)
	require.Equal(t, meta.ID, *hub.SourceJobID)
	assert.Equal(t, string(enums.KitchenStatusPending), hub.ItemsStatusByTenant[f.tenantA.ID.String()])
	assert.Equal(t, string(enums.KitchenStatusPending), hub.ItemsStatusByTenant[f.tenantB.ID.String()])

	subs := f.subOrdersByStore(t, hub.ID)
	require.Len(t, subs, 2)
	assert.Equal(t, 20000.0, subs[f.tenantA.ID].Subtotal)
	assert.Equal(t, 5000.0, subs[f.tenantB.ID].Subtotal)
	assert.Equal(t, SubOrderID(hub.ID, f.tenantA.ID), subs[f.tenantA.ID].ID)
	assert.Equal(t, int64(1), subs[f.tenantA.ID].ReceiptNumber)
	assert.Equal(t, int64(1), subs[f.tenantB.ID].ReceiptNumber)

	assert.InDelta(t, 9.5, f.store(t, f.hub.ID).PradanaTokenBalance, 1e-9)
	assert.Equal(t, int64(8), f.stock(t, f.productA.ID))
	assert.Equal(t, int64(9), f.stock(t, f.productB.ID))
	assert.NotNil(t, f.store(t, f.tenantA.ID).LastTransactionAt)

	var entry models.TokenLedgerEntry
	require.NoError(t, f.conn.Where("store_id = ?", f.hub.ID).First(&entry).Error)
	assert.Equal(t, enums.TokenEntryDebit, entry.Kind)
	assert.Equal(t, feeReference(hub.ID), entry.Reference)
}

func TestOrderCreateRedeliveryIsIdempotent(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	meta := jobs.Meta{ID: uuid.New(), Type: enums.JobTypeOrderCreate}

	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, f.orderPayload()))
	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, f.orderPayload()))

	assert.EqualValues(t, 3, f.countTransactions(t))
	assert.InDelta(t, 9.5, f.store(t, f.hub.ID).PradanaTokenBalance, 1e-9)
	assert.Equal(t, int64(8), f.stock(t, f.productA.ID))
	assert.Equal(t, int64(1), f.store(t, f.tenantA.ID).TransactionCounter)
	assert.Equal(t, int64(1), f.store(t, f.hub.ID).TransactionCounter)

	subs := f.subOrdersByStore(t, HubOrderID(meta.ID, nil))
	assert.Equal(t, int64(1), subs[f.tenantA.ID].ReceiptNumber)
}

func TestOrderCreateExplicitOrderID(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	orderID := uuid.New()
	payload := f.orderPayload()
	payload.OrderID = &orderID

	// two different job entries carrying the same order id
	require.NoError(t, f.handler.HandleOrderCreate(ctx, jobs.Meta{ID: uuid.New()}, payload))
	require.NoError(t, f.handler.HandleOrderCreate(ctx, jobs.Meta{ID: uuid.New()}, payload))

	_, err := f.repo.Get(ctx, orderID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, f.countTransactions(t))
}

func TestOrderCreateInsufficientBalanceLeavesNothing(t *testing.T) {
	f := newFixture(t, 0.2)
	ctx := context.Background()

	err := f.handler.HandleOrderCreate(ctx, jobs.Meta{ID: uuid.New()}, f.orderPayload())
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInsufficientBalance))

	assert.Zero(t, f.countTransactions(t))
	assert.InDelta(t, 0.2, f.store(t, f.hub.ID).PradanaTokenBalance, 1e-9)
	assert.Equal(t, int64(10), f.stock(t, f.productA.ID))
	assert.Zero(t, f.store(t, f.tenantA.ID).TransactionCounter)
}

func TestOrderCreateUnknownTenantFails(t *testing.T) {
	f := newFixture(t, 10)
	payload := f.orderPayload()
	payload.Cart[1].StoreID = uuid.NewString()

	err := f.handler.HandleOrderCreate(context.Background(), jobs.Meta{ID: uuid.New()}, payload)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Zero(t, f.countTransactions(t))
}

func TestOrderCreateUntaggedItemStaysOnHub(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	meta := jobs.Meta{ID: uuid.New()}
	payload := f.orderPayload()
	payload.Cart = append(payload.Cart, jobs.CartItem{ProductID: "custom", ProductName: "Kerupuk", Quantity: 1, Price: 2000})

	require.NoError(t, f.handler.HandleOrderCreate(ctx, meta, payload))

	hub, err := f.repo.Get(ctx, HubOrderID(meta.ID, nil))
	require.NoError(t, err)
	assert.Len(t, hub.Items, 3)
	assert.Equal(t, 27000.0, hub.Subtotal)

	subs := f.subOrdersByStore(t, hub.ID)
	require.Len(t, subs, 2)
	assert.Equal(t, 20000.0+5000.0, subs[f.tenantA.ID].Subtotal+subs[f.tenantB.ID].Subtotal)
}

func TestOrderCreateAppliesLoyalty(t *testing.T) {
	f := newFixture(t, 10)
	ctx := context.Background()
	require.NoError(t, f.conn.Create(&models.Customer{ID: "cust-1", ScopeID: "melati", Name: "Rina", LoyaltyPoints: 100}).Error)

	payload := f.orderPayload()
	payload.Customer = &jobs.Customer{ID: "cust-1", Name: "Rina"}
	payload.PointsEarned = 10
	payload.PointsToRedeem = 30

	require.NoError(t, f.handler.HandleOrderCreate(ctx, jobs.Meta{ID: uuid.New()}, payload))

	var c models.Customer
	require.NoError(t, f.conn.Where("id = ?", "cust-1").First(&c).Error)
	assert.Equal(t, int64(80), c.LoyaltyPoints)
}

func TestOrderCreateRejectsEmptyCart(t *testing.T) {
	f := newFixture(t, 10)
	payload := f.orderPayload()
	payload.Cart = nil

	err := f.handler.HandleOrderCreate(context.Background(), jobs.Meta{ID: uuid.New()}, payload)
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
