package transactions

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/internal/inventory"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/internal/loyalty"
	"github.com/pujasera/pos-backend/internal/receipts"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/internal/tables"
	"github.com/pujasera/pos-backend/internal/tokens"
	"github.com/pujasera/pos-backend/pkg/db"
	"github.com/pujasera/pos-backend/pkg/db/dbtest"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/outbox"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	conn        *gorm.DB
	client      *db.Client
	repo        *Repository
	tables      *tables.Service
	distributor *Distributor
	svc         *Service
	handler     *OrderCreateHandler

	hub      models.Store
	tenantA  models.Store
	tenantB  models.Store
	productA models.Product
	productB models.Product
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "transactions-test", Output: io.Discard})
}

func newFixture(t *testing.T, hubBalance float64) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	client := db.NewFromConn(conn)
	logg := testLogger()
	slug := "melati"

	f := &fixture{conn: conn, client: client, repo: NewRepository(conn)}
	f.hub = models.Store{ID: uuid.New(), Name: "Pujasera Melati", Kind: enums.StoreKindHub, PujaseraGroupSlug: &slug, PradanaTokenBalance: hubBalance}
	f.tenantA = models.Store{ID: uuid.New(), Name: "Bakso Pak Min", Kind: enums.StoreKindTenant, PujaseraGroupSlug: &slug}
	f.tenantB = models.Store{ID: uuid.New(), Name: "Es Teler 77", Kind: enums.StoreKindTenant, PujaseraGroupSlug: &slug}
	for _, s := range []*models.Store{&f.hub, &f.tenantA, &f.tenantB} {
		require.NoError(t, conn.Create(s).Error)
	}
	f.productA = models.Product{ID: uuid.New(), StoreID: f.tenantA.ID, Name: "Bakso Urat", Price: 10000, Stock: 10, TrackStock: true}
	f.productB = models.Product{ID: uuid.New(), StoreID: f.tenantB.ID, Name: "Es Teler", Price: 5000, Stock: 10, TrackStock: true}
	require.NoError(t, conn.Create(&f.productA).Error)
	require.NoError(t, conn.Create(&f.productB).Error)

	tableSvc, err := tables.NewService(client, conn)
	require.NoError(t, err)
	f.tables = tableSvc

	f.distributor, err = NewDistributor(DistributorParams{
		Repo:      f.repo,
		Stores:    stores.NewRepository(conn),
		Ledger:    tokens.NewLedger(),
		Receipts:  receipts.NewSequencer(),
		Inventory: inventory.NewAdjuster(),
		Loyalty:   loyalty.NewAdjuster(),
		Tables:    tableSvc,
		Logger:    logg,
	})
	require.NoError(t, err)

	settings := fees.StaticSource{Schedule: fees.Schedule{FeePercentage: 0.005, MinFeeRp: 500, MaxFeeRp: 2500, TokenValueRp: 1000}}
	f.svc, err = NewService(ServiceParams{
		TxRunner:    client,
		Distributor: f.distributor,
		Settings:    settings,
		Outbox:      outbox.NewService(outbox.NewRepository(conn), logg),
		Logger:      logg,
	})
	require.NoError(t, err)

	f.handler, err = NewOrderCreateHandler(client, f.distributor, settings, logg)
	require.NoError(t, err)
	return f
}

// orderPayload is the two-tenant cart: 2 x 10000 from tenant A, 1 x 5000 from tenant B.
func (f *fixture) orderPayload() jobs.OrderCreatePayload {
	return jobs.OrderCreatePayload{
		PujaseraID: f.hub.ID,
		Customer:   &jobs.Customer{ID: loyalty.GuestCustomerID, Name: "Walk in"},
		Cart: []jobs.CartItem{
			{ProductID: f.productA.ID.String(), ProductName: "Bakso Urat", Quantity: 2, Price: 10000, StoreID: f.tenantA.ID.String(), StoreName: f.tenantA.Name},
			{ProductID: f.productB.ID.String(), ProductName: "Es Teler", Quantity: 1, Price: 5000, StoreID: f.tenantB.ID.String(), StoreName: f.tenantB.Name},
		},
		Subtotal:      25000,
		TotalAmount:   25000,
		PaymentMethod: string(enums.PaymentMethodCash),
		StaffID:       "kasir-1",
	}
}

func (f *fixture) store(t *testing.T, id uuid.UUID) models.Store {
	t.Helper()
	var s models.Store
	require.NoError(t, f.conn.Where("id = ?", id).First(&s).Error)
	return s
}

func (f *fixture) stock(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	var p models.Product
	require.NoError(t, f.conn.Where("id = ?", id).First(&p).Error)
	return p.Stock
}

func (f *fixture) countTransactions(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.conn.Model(&models.Transaction{}).Count(&n).Error)
	return n
}

func (f *fixture) subOrdersByStore(t *testing.T, hubID uuid.UUID) map[uuid.UUID]models.Transaction {
	t.Helper()
	subs, err := f.repo.ListSubOrders(context.Background(), hubID)
	require.NoError(t, err)
	out := make(map[uuid.UUID]models.Transaction, len(subs))
	for _, s := range subs {
		out[s.StoreID] = s
	}
	return out
}
