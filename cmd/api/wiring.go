package main

import (
	"github.com/pujasera/pos-backend/api/routes"
	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/internal/inventory"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/internal/loyalty"
	"github.com/pujasera/pos-backend/internal/receipts"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/internal/tables"
	"github.com/pujasera/pos-backend/internal/tokens"
	"github.com/pujasera/pos-backend/internal/transactions"
	"github.com/pujasera/pos-backend/pkg/config"
	"github.com/pujasera/pos-backend/pkg/db"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/outbox"
	"github.com/pujasera/pos-backend/pkg/redis"
	"github.com/pujasera/pos-backend/pkg/security"
)

func buildDependencies(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*routes.Dependencies, error) {
	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	settings := fees.NewRepository(conn)

	jobsRepo := jobs.NewRepository(conn)
	enqueuer, err := jobs.NewEnqueuer(dbClient, jobsRepo, emitter)
	if err != nil {
		return nil, err
	}

	tableSvc, err := tables.NewService(dbClient, conn)
	if err != nil {
		return nil, err
	}
	storeRepo := stores.NewRepository(conn)
	storeSvc, err := stores.NewService(storeRepo)
	if err != nil {
		return nil, err
	}

	distributor, err := transactions.NewDistributor(transactions.DistributorParams{
		Repo:      transactions.NewRepository(conn),
		Stores:    storeRepo,
		Ledger:    tokens.NewLedger(),
		Receipts:  receipts.NewSequencer(),
		Inventory: inventory.NewAdjuster(),
		Loyalty:   loyalty.NewAdjuster(),
		Tables:    tableSvc,
		Logger:    logg,
	})
	if err != nil {
		return nil, err
	}
	txService, err := transactions.NewService(transactions.ServiceParams{
		TxRunner:    dbClient,
		Distributor: distributor,
		Settings:    settings,
		Outbox:      emitter,
		Logger:      logg,
	})
	if err != nil {
		return nil, err
	}

	return &routes.Dependencies{
		Config:       cfg,
		Logger:       logg,
		DB:           dbClient,
		Redis:        redisClient,
		Enqueuer:     enqueuer,
		Jobs:         jobsRepo,
		Transactions: txService,
		Tables:       tableSvc,
		Stores:       storeSvc,
		Fees:         settings,
		Hasher:       security.NewHasher(cfg.Password),
	}, nil
}
