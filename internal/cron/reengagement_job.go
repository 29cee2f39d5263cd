package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/logger"
	"go.uber.org/multierr"
)

const idleWindow = 7 * 24 * time.Hour

type idleStores interface {
	ListIdleSince(ctx context.Context, cutoff time.Time) ([]models.Store, error)
	MarkReengagementSent(ctx context.Context, storeID uuid.UUID, at time.Time) error
}

type ReengagementJobParams struct {
	Logger   *logger.Logger
	Stores   idleStores
	Enqueuer jobEnqueuer
	Location *time.Location
}

// NewReengagementJob nudges stores that sold nothing in the last week. The
// stamp on the store keeps a second message out for another seven days.
func NewReengagementJob(params ReengagementJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Enqueuer == nil {
		return nil, fmt.Errorf("enqueuer required")
	}
	return &reengagementJob{
		logg:     params.Logger,
		stores:   params.Stores,
		enqueuer: params.Enqueuer,
		schedule: Weekly(time.Monday, 10, 0, params.Location),
		now:      time.Now,
	}, nil
}

type reengagementJob struct {
	logg     *logger.Logger
	stores   idleStores
	enqueuer jobEnqueuer
	schedule Schedule
	now      func() time.Time
}

func (j *reengagementJob) Name() string { return "store-reengagement" }

func (j *reengagementJob) Schedule() Schedule { return j.schedule }

func (j *reengagementJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	idle, err := j.stores.ListIdleSince(ctx, now.Add(-idleWindow))
	if err != nil {
		return fmt.Errorf("list idle stores: %w", err)
	}

	var errs error
	sent := 0
	for _, store := range idle {
		if store.WhatsApp == nil || *store.WhatsApp == "" {
			continue
		}
		job := jobs.NotificationSend{Payload: jobs.NotificationPayload{
			To:      *store.WhatsApp,
			Message: reengagementMessage(store.Name),
		}}
		if _, err := j.enqueuer.Enqueue(ctx, job); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store %s: %w", store.ID, err))
			continue
		}
		if err := j.stores.MarkReengagementSent(ctx, store.ID, now); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store %s stamp: %w", store.ID, err))
			continue
		}
		sent++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"idle_stores": len(idle), "enqueued": sent})
	j.logg.Info(logCtx, "re-engagement messages enqueued")
	return errs
}

func reengagementMessage(storeName string) string {
	return fmt.Sprintf("Halo %s! Sudah seminggu belum ada transaksi tercatat. Yuk buka kasir dan mulai jualan lagi hari ini.", storeName)
}
