package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	"github.com/pujasera/pos-backend/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	defaultStaleJobAge   = 10 * time.Minute
	defaultStaleJobBatch = 100
	staleSweepInterval   = 5 * time.Minute
)

type staleJobs interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.JobQueueEntry, error)
}

type jobSignaler interface {
	Signal(ctx context.Context, tx *gorm.DB, id uuid.UUID, jobType enums.JobType, redelivery bool) error
}

type StaleJobSweepJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Jobs     staleJobs
	Signaler jobSignaler
	MaxAge   time.Duration
	Batch    int
}

// NewStaleJobSweepJob re-announces queue entries still pending after MaxAge.
// The processor skips entries that are already terminal, so a duplicate
// signal is harmless.
func NewStaleJobSweepJob(params StaleJobSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Jobs == nil {
		return nil, fmt.Errorf("jobs repository required")
	}
	if params.Signaler == nil {
		return nil, fmt.Errorf("job signaler required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultStaleJobAge
	}
	batch := params.Batch
	if batch <= 0 {
		batch = defaultStaleJobBatch
	}
	return &staleJobSweepJob{
		logg:     params.Logger,
		db:       params.DB,
		jobs:     params.Jobs,
		signaler: params.Signaler,
		maxAge:   maxAge,
		batch:    batch,
		now:      time.Now,
	}, nil
}

type staleJobSweepJob struct {
	logg     *logger.Logger
	db       txRunner
	jobs     staleJobs
	signaler jobSignaler
	maxAge   time.Duration
	batch    int
	now      func() time.Time
}

func (j *staleJobSweepJob) Name() string { return "stale-job-sweep" }

func (j *staleJobSweepJob) Schedule() Schedule { return Every(staleSweepInterval) }

func (j *staleJobSweepJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	entries, err := j.jobs.ListStalePending(ctx, cutoff, j.batch)
	if err != nil {
		return fmt.Errorf("list stale jobs: %w", err)
	}

	var errs error
	signaled := 0
	for _, entry := range entries {
		entry := entry
		err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
			return j.signaler.Signal(ctx, tx, entry.ID, enums.JobType(entry.Type), true)
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("job %s: %w", entry.ID, err))
			continue
		}
		signaled++
	}

	if len(entries) > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{"stale": len(entries), "signaled": signaled, "cutoff": cutoff})
		j.logg.Warn(logCtx, "re-signaled stale pending jobs")
	}
	return errs
}
