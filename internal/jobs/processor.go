package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/metrics"
)

// ProcessorParams wires the processor dependencies.
type ProcessorParams struct {
	Repo     *Repository
	Handlers Handlers
	Metrics  *metrics.JobQueueMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

// Processor dispatches pending entries to their handler and records the
// terminal status. Handler errors never escape: they become failed{error}.
type Processor struct {
	repo     *Repository
	handlers Handlers
	metrics  *metrics.JobQueueMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewProcessor(params ProcessorParams) (*Processor, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("jobs repository required")
	}
	if params.Handlers == nil {
		return nil, fmt.Errorf("handlers required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Processor{
		repo:     params.Repo,
		handlers: params.Handlers,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Process runs one entry. The returned error is reserved for infrastructure
// failures (loading or updating the entry) that justify redelivery.
func (p *Processor) Process(ctx context.Context, id uuid.UUID) (enums.JobStatus, error) {
	ctx = p.logg.WithJobID(ctx, id.String())

	entry, err := p.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	ctx = p.logg.WithField(ctx, "job_type", entry.Type)

	if entry.Status != enums.JobStatusPending {
		p.logg.Info(ctx, "job already terminal, skipping")
		return entry.Status, nil
	}

	started := p.now()
	status, runErr := p.run(ctx, Meta{ID: entry.ID, Type: enums.JobType(entry.Type)}, entry)

	var errMsg *string
	if runErr != nil {
		msg := runErr.Error()
		errMsg = &msg
	}

	updated, err := p.repo.MarkTerminal(ctx, entry.ID, status, errMsg, p.now())
	if err != nil {
		return "", err
	}
	if !updated {
		p.logg.Warn(ctx, "job reached a terminal status concurrently")
		current, err := p.repo.Get(ctx, entry.ID)
		if err != nil {
			return "", err
		}
		return current.Status, nil
	}

	p.metrics.Observe(entry.Type, string(status), p.now().Sub(started))
	ctx = p.logg.WithField(ctx, "status", status)
	if runErr != nil {
		p.logg.Error(ctx, "job failed", runErr)
	} else {
		p.logg.Info(ctx, "job processed")
	}
	return status, nil
}

func (p *Processor) run(ctx context.Context, meta Meta, entry *models.JobQueueEntry) (status enums.JobStatus, err error) {
	job, err := Decode(*entry)
	if errors.Is(err, ErrUnknownType) {
		return enums.JobStatusUnknownType, err
	}
	if err != nil {
		return enums.JobStatusFailed, err
	}
	if err := Validate(job.payload()); err != nil {
		return enums.JobStatusFailed, err
	}

	defer func() {
		if r := recover(); r != nil {
			status = enums.JobStatusFailed
			err = pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("handler panic: %v", r))
		}
	}()

	if err := job.accept(ctx, meta, p.handlers); err != nil {
		return enums.JobStatusFailed, err
	}
	return job.successStatus(), nil
}
