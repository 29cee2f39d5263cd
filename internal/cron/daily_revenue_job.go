package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/pkg/logger"
	"go.uber.org/multierr"
)

type revenueSource interface {
	DailyRevenue(ctx context.Context, from, to time.Time) ([]stores.RevenueRow, error)
	AdminContacts(ctx context.Context, storeID uuid.UUID) ([]stores.Contact, error)
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, job jobs.Job) (uuid.UUID, error)
}

type DailyRevenueJobParams struct {
	Logger   *logger.Logger
	Stores   revenueSource
	Enqueuer jobEnqueuer
	Location *time.Location
}

// NewDailyRevenueJob reports the previous local day's revenue to every store
// administrator with a WhatsApp number, shortly after midnight.
func NewDailyRevenueJob(params DailyRevenueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Enqueuer == nil {
		return nil, fmt.Errorf("enqueuer required")
	}
	loc := orUTC(params.Location)
	return &dailyRevenueJob{
		logg:     params.Logger,
		stores:   params.Stores,
		enqueuer: params.Enqueuer,
		loc:      loc,
		schedule: Daily(0, 1, loc),
		now:      time.Now,
	}, nil
}

type dailyRevenueJob struct {
	logg     *logger.Logger
	stores   revenueSource
	enqueuer jobEnqueuer
	loc      *time.Location
	schedule Schedule
	now      func() time.Time
}

func (j *dailyRevenueJob) Name() string { return "daily-revenue-report" }

func (j *dailyRevenueJob) Schedule() Schedule { return j.schedule }

func (j *dailyRevenueJob) Run(ctx context.Context) error {
	from, to := previousDay(j.now(), j.loc)
	rows, err := j.stores.DailyRevenue(ctx, from, to)
	if err != nil {
		return fmt.Errorf("daily revenue: %w", err)
	}

	var errs error
	sent := 0
	for _, row := range rows {
		contacts, err := j.stores.AdminContacts(ctx, row.StoreID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store %s contacts: %w", row.StoreID, err))
			continue
		}
		message := revenueMessage(row, from)
		for _, contact := range contacts {
			job := jobs.NotificationSend{Payload: jobs.NotificationPayload{To: contact.WhatsApp, Message: message}}
			if _, err := j.enqueuer.Enqueue(ctx, job); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("store %s admin %s: %w", row.StoreID, contact.UserID, err))
				continue
			}
			sent++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"report_date": from.Format("2006-01-02"),
		"stores":      len(rows),
		"enqueued":    sent,
	})
	j.logg.Info(logCtx, "daily revenue report enqueued")
	return errs
}

// previousDay returns [start, end) of the local day before now.
func previousDay(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return end.AddDate(0, 0, -1), end
}

func revenueMessage(row stores.RevenueRow, day time.Time) string {
	return fmt.Sprintf("Laporan harian %s (%s)\nJumlah transaksi: %d\nTotal pendapatan: %s",
		row.StoreName, day.Format("02-01-2006"), row.Orders, formatRupiah(row.Revenue))
}
