package jobs

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/outbox/idempotency"
	"github.com/pujasera/pos-backend/pkg/outbox/payloads"
	"github.com/pujasera/pos-backend/pkg/outbox/registry"
)

// ConsumerName scopes idempotency keys for job_enqueued deliveries.
const ConsumerName = "job-consumer"

type processor interface {
	Process(ctx context.Context, id uuid.UUID) (enums.JobStatus, error)
}

// Consumer turns job_enqueued deliveries into Processor runs.
type Consumer struct {
	subscription *pubsub.Subscriber
	registry     *registry.EventRegistry
	idempotency  *idempotency.Manager
	processor    processor
	logg         *logger.Logger
}

func NewConsumer(subscription *pubsub.Subscriber, reg *registry.EventRegistry, manager *idempotency.Manager, proc processor, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("jobs subscription required")
	}
	if reg == nil {
		return nil, fmt.Errorf("event registry required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if proc == nil {
		return nil, fmt.Errorf("processor required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		registry:     reg,
		idempotency:  manager,
		processor:    proc,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.ID, msg.Attributes, msg.Data).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	nack bool
}

func (c *Consumer) process(ctx context.Context, messageID string, attributes map[string]string, data []byte) processResult {
	ctx = c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": attributes["event_type"],
	})

	resolved, err := c.registry.ResolveMessage(attributes, data)
	if err != nil {
		c.logg.Error(ctx, "dropping undecodable message", err)
		return processResult{}
	}
	event, ok := resolved.Payload.(*payloads.JobEnqueuedEvent)
	if !ok {
		c.logg.Warn(ctx, "skipping non job event")
		return processResult{}
	}

	eventID, err := uuid.Parse(resolved.Envelope.EventID)
	if err != nil {
		c.logg.Error(ctx, "invalid event id", err)
		return processResult{}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, ConsumerName, eventID)
	if err != nil {
		c.logg.Error(ctx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(ctx, "event already processed")
		return processResult{}
	}

	ctx = c.logg.WithFields(ctx, map[string]any{
		"job_id":     event.JobID.String(),
		"redelivery": event.Redelivery,
	})
	if _, err := c.processor.Process(ctx, event.JobID); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			c.logg.Warn(ctx, "job entry not found, acking")
			return processResult{}
		}
		c.logg.Error(ctx, "job processing failed", err)
		if delErr := c.idempotency.Delete(ctx, ConsumerName, eventID); delErr != nil {
			c.logg.Error(ctx, "failed to release idempotency key", delErr)
		}
		return processResult{nack: true}
	}
	return processResult{}
}
