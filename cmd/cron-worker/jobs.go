package main

import (
	"time"

	"github.com/pujasera/pos-backend/internal/cron"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/pkg/config"
	"github.com/pujasera/pos-backend/pkg/db"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/outbox"
)

func buildRegistry(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	storeRepo *stores.Repository,
	jobsRepo *jobs.Repository,
	enqueuer *jobs.Enqueuer,
	outboxRepo *outbox.Repository,
	loc *time.Location,
) (*cron.Registry, error) {
	report, err := cron.NewDailyRevenueJob(cron.DailyRevenueJobParams{
		Logger:   logg,
		Stores:   storeRepo,
		Enqueuer: enqueuer,
		Location: loc,
	})
	if err != nil {
		return nil, err
	}
	reengage, err := cron.NewReengagementJob(cron.ReengagementJobParams{
		Logger:   logg,
		Stores:   storeRepo,
		Enqueuer: enqueuer,
		Location: loc,
	})
	if err != nil {
		return nil, err
	}
	sweep, err := cron.NewStaleJobSweepJob(cron.StaleJobSweepJobParams{
		Logger:   logg,
		DB:       dbClient,
		Jobs:     jobsRepo,
		Signaler: enqueuer,
		MaxAge:   cfg.Cron.StaleJobAge,
		Batch:    cfg.Cron.StaleJobBatch,
	})
	if err != nil {
		return nil, err
	}
	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:      logg,
		DB:          dbClient,
		Repository:  outboxRepo,
		Retention:   cfg.Outbox.RetentionDays,
		MinAttempts: cfg.Outbox.MaxAttempts,
		Location:    loc,
	})
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(report, reengage, sweep, retention), nil
}
