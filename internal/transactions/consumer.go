package transactions

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/outbox/idempotency"
	"github.com/pujasera/pos-backend/pkg/outbox/payloads"
	"github.com/pujasera/pos-backend/pkg/outbox/registry"
)

// ConsumerName scopes idempotency keys for transaction_created deliveries.
const ConsumerName = "distribution-consumer"

type settler interface {
	Settle(ctx context.Context, id uuid.UUID) (*Result, error)
}

// Consumer is the distribution trigger: every transaction_created event
// settles its hub order.
type Consumer struct {
	subscription *pubsub.Subscriber
	registry     *registry.EventRegistry
	idempotency  *idempotency.Manager
	settler      settler
	logg         *logger.Logger
}

func NewConsumer(subscription *pubsub.Subscriber, reg *registry.EventRegistry, manager *idempotency.Manager, svc settler, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("transactions subscription required")
	}
	if reg == nil {
		return nil, fmt.Errorf("event registry required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if svc == nil {
		return nil, fmt.Errorf("settler required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		registry:     reg,
		idempotency:  manager,
		settler:      svc,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.ID, msg.Attributes, msg.Data) {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// process reports whether the message should be redelivered.
func (c *Consumer) process(ctx context.Context, messageID string, attributes map[string]string, data []byte) bool {
	ctx = c.logg.WithField(ctx, "message_id", messageID)

	resolved, err := c.registry.ResolveMessage(attributes, data)
	if err != nil {
		c.logg.Error(ctx, "dropping undecodable message", err)
		return false
	}
	event, ok := resolved.Payload.(*payloads.TransactionCreatedEvent)
	if !ok {
		c.logg.Warn(ctx, "skipping non transaction event")
		return false
	}
	eventID, err := uuid.Parse(resolved.Envelope.EventID)
	if err != nil {
		c.logg.Error(ctx, "invalid event id", err)
		return false
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, ConsumerName, eventID)
	if err != nil {
		c.logg.Error(ctx, "idempotency check failed", err)
		return true
	}
	if already {
		c.logg.Info(ctx, "event already processed")
		return false
	}

	ctx = c.logg.WithTransactionID(ctx, event.TransactionID.String())
	if _, err := c.settler.Settle(ctx, event.TransactionID); err != nil {
		if !pkgerrors.MetadataFor(codeOf(err)).Retryable {
			// recorded on the hub as failed; redelivery cannot fix it
			c.logg.Error(ctx, "settlement failed", err)
			return false
		}
		c.logg.Error(ctx, "settlement failed, retrying", err)
		if delErr := c.idempotency.Delete(ctx, ConsumerName, eventID); delErr != nil {
			c.logg.Error(ctx, "failed to release idempotency key", delErr)
		}
		return true
	}
	return false
}

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return pkgerrors.CodeInternal
}
