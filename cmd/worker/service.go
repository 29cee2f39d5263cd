package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pujasera/pos-backend/pkg/config"
	"github.com/pujasera/pos-backend/pkg/logger"
	"go.uber.org/multierr"
)

type pinger interface {
	Ping(context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Config               *config.Config
	Logger               *logger.Logger
	DB                   pinger
	Redis                pinger
	PubSub               pinger
	JobConsumer          runner
	DistributionConsumer runner
}

// Service runs the job consumer and the distribution consumer side by side
// until the context ends or either stops.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	db           pinger
	redis        pinger
	pubsub       pinger
	jobs         runner
	distribution runner
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.JobConsumer == nil {
		return nil, errors.New("job consumer is required")
	}
	if params.DistributionConsumer == nil {
		return nil, errors.New("distribution consumer is required")
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		db:           params.DB,
		redis:        params.Redis,
		pubsub:       params.PubSub,
		jobs:         params.JobConsumer,
		distribution: params.DistributionConsumer,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping); err != nil {
		return err
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	start := func(name string, r runner) {
		go func() {
			if err := r.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("%s: %w", name, err)
				return
			}
			errCh <- nil
		}()
	}
	start("job consumer", s.jobs)
	start("distribution consumer", s.distribution)

	var errs error
	first := <-errCh
	errs = multierr.Append(errs, first)
	if first != nil {
		s.logg.Error(ctx, "consumer stopped unexpectedly", first)
	}
	cancel()
	errs = multierr.Append(errs, <-errCh)

	if errs == nil && ctx.Err() != nil {
		s.logg.Info(ctx, "worker context canceled")
		return ctx.Err()
	}
	return errs
}
