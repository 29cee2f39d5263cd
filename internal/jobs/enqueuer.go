package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/outbox"
	"github.com/pujasera/pos-backend/pkg/outbox/payloads"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Enqueuer writes queue entries together with the job_enqueued outbox event
// that wakes the worker, so an entry is never committed without its signal.
type Enqueuer struct {
	tx     txRunner
	repo   *Repository
	outbox eventEmitter
}

func NewEnqueuer(tx txRunner, repo *Repository, emitter eventEmitter) (*Enqueuer, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("jobs repository required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &Enqueuer{tx: tx, repo: repo, outbox: emitter}, nil
}

// Enqueue stores job in its own unit and returns the entry id.
func (e *Enqueuer) Enqueue(ctx context.Context, job Job) (uuid.UUID, error) {
	var id uuid.UUID
	err := e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		id, err = e.EnqueueTx(ctx, tx, job)
		return err
	})
	return id, err
}

// EnqueueTx stores job inside the caller's unit.
func (e *Enqueuer) EnqueueTx(ctx context.Context, tx *gorm.DB, job Job) (uuid.UUID, error) {
	if job == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "job required")
	}
	if err := Validate(job.payload()); err != nil {
		return uuid.Nil, err
	}
	raw, err := json.Marshal(job.payload())
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode job payload")
	}

	entry := &models.JobQueueEntry{
		ID:      uuid.New(),
		Type:    string(job.Type()),
		Payload: raw,
		Status:  enums.JobStatusPending,
	}
	if err := e.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert job")
	}
	if err := e.Signal(ctx, tx, entry.ID, job.Type(), false); err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

// Signal emits job_enqueued for an existing entry. The stale sweep uses it
// with redelivery set to re-announce entries whose first signal was lost.
func (e *Enqueuer) Signal(ctx context.Context, tx *gorm.DB, id uuid.UUID, jobType enums.JobType, redelivery bool) error {
	err := e.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventJobEnqueued,
		AggregateType: enums.AggregateJob,
		AggregateID:   id,
		Actor:         &outbox.ActorRef{Kind: "job_queue"},
		Data: payloads.JobEnqueuedEvent{
			JobID:      id,
			JobType:    jobType,
			Redelivery: redelivery,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit job_enqueued")
	}
	return nil
}
