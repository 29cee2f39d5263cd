package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/internal/identity"
	"github.com/pujasera/pos-backend/internal/inventory"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/internal/loyalty"
	"github.com/pujasera/pos-backend/internal/notifications"
	"github.com/pujasera/pos-backend/internal/receipts"
	"github.com/pujasera/pos-backend/internal/registration"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/internal/tables"
	"github.com/pujasera/pos-backend/internal/tokens"
	"github.com/pujasera/pos-backend/internal/transactions"
	"github.com/pujasera/pos-backend/internal/users"
	"github.com/pujasera/pos-backend/pkg/config"
	"github.com/pujasera/pos-backend/pkg/db"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/metrics"
	"github.com/pujasera/pos-backend/pkg/outbox"
	"github.com/pujasera/pos-backend/pkg/outbox/idempotency"
	"github.com/pujasera/pos-backend/pkg/outbox/registry"
	"github.com/pujasera/pos-backend/pkg/pubsub"
	"github.com/pujasera/pos-backend/pkg/redis"
	"github.com/pujasera/pos-backend/pkg/whatsapp"
)

type consumerSet struct {
	jobs         *jobs.Consumer
	distribution *transactions.Consumer
}

func buildConsumers(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, pubsubClient *pubsub.Client) (*consumerSet, error) {
	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	settings := fees.NewRepository(conn)

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	if err != nil {
		return nil, err
	}
	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	if err != nil {
		return nil, err
	}

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
	ledger := tokens.NewLedger()
	distributor, err := transactions.NewDistributor(transactions.DistributorParams{
		Repo:      transactions.NewRepository(conn),
		Stores:    storeRepo,
		Ledger:    ledger,
		Receipts:  receipts.NewSequencer(),
		Inventory: inventory.NewAdjuster(),
		Loyalty:   loyalty.NewAdjuster(),
		Tables:    tableSvc,
		Logger:    logg,
	})
	if err != nil {
		return nil, err
	}

	orders, err := transactions.NewOrderCreateHandler(dbClient, distributor, settings, logg)
	if err != nil {
		return nil, err
	}
	gateway, err := whatsapp.NewClient(cfg.Messaging.GatewayURL, cfg.Messaging.DeviceID, whatsapp.WithTimeout(cfg.Messaging.Timeout))
	if err != nil {
		return nil, err
	}
	notifier, err := notifications.NewHandler(cfg.Messaging, gateway, logg)
	if err != nil {
		return nil, err
	}
	registrations, err := registration.NewService(registration.ServiceParams{
		TxRunner: dbClient,
		Identity: identity.NewStore(conn),
		Stores:   storeRepo,
		Users:    users.NewRepository(conn),
		Ledger:   ledger,
		Settings: settings,
		Enqueuer: enqueuer,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}

	router, err := jobs.NewRouter(orders, notifier, registrations)
	if err != nil {
		return nil, err
	}
	processor, err := jobs.NewProcessor(jobs.ProcessorParams{
		Repo:     jobsRepo,
		Handlers: router,
		Metrics:  metrics.NewJobQueueMetrics(prometheus.DefaultRegisterer),
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}
	jobConsumer, err := jobs.NewConsumer(pubsubClient.JobsSubscription(), eventRegistry, manager, processor, logg)
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
	distributionConsumer, err := transactions.NewConsumer(pubsubClient.TransactionsSubscription(), eventRegistry, manager, txService, logg)
	if err != nil {
		return nil, err
	}

	return &consumerSet{jobs: jobConsumer, distribution: distributionConsumer}, nil
}
