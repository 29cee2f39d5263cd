package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/metrics"
	"gorm.io/gorm"
)

const defaultInterval = time.Minute

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Slots    SlotClaimer
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
	Now      func() time.Time
}

// Service ticks on a fixed cadence and runs every job whose current slot has
// not run yet anywhere in the fleet.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	slots    SlotClaimer
	metrics  *metrics.CronJobMetrics
	interval time.Duration
	now      func() time.Time
	seen     map[string]string
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock required")
	}
	if params.Slots == nil {
		return nil, fmt.Errorf("slot claimer required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		slots:    params.Slots,
		metrics:  params.Metrics,
		interval: interval,
		now:      now,
		seen:     map[string]string{},
	}, nil
}

// Run starts the cron loop until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.runCycle(ctx); err != nil {
		s.logg.Error(ctx, "scheduled run failed", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				s.logg.Error(ctx, "scheduled run failed", err)
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	locked, err := s.lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "another cron instance is running; skipping this cycle")
		return nil
	}
	defer func() {
		if relErr := s.lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release cron lock", relErr)
		}
	}()

	now := s.now()
	for _, job := range s.registry.Jobs() {
		slot := job.Schedule().Slot(now)
		if s.seen[job.Name()] == slot {
			continue
		}

		jobCtx := s.logg.WithFields(ctx, map[string]any{"job": job.Name(), "slot": slot})
		claimed, err := s.slots.Claim(ctx, job.Name(), slot)
		if err != nil {
			s.logg.Error(jobCtx, "slot claim failed", err)
			continue
		}
		s.seen[job.Name()] = slot
		if !claimed {
			s.metrics.IncSkipped(job.Name())
			continue
		}
		s.runJob(jobCtx, job)
	}
	return nil
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "event", "cron.job")
	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.metrics.IncFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.metrics.IncSuccess(job.Name())
}
