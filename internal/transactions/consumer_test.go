package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/config"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/outbox"
	"github.com/pujasera/pos-backend/pkg/outbox/idempotency"
	"github.com/pujasera/pos-backend/pkg/outbox/payloads"
	"github.com/pujasera/pos-backend/pkg/outbox/registry"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (s *memoryStore) Get(context.Context, string) (string, error) { return "", nil }

func (s *memoryStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.keys, k)
	}
	return nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return "pos:idempotency:" + scope + ":" + id
}

type stubSettler struct {
	calls []uuid.UUID
	err   error
}

func (s *stubSettler) Settle(ctx context.Context, id uuid.UUID) (*Result, error) {
	s.calls = append(s.calls, id)
	if s.err != nil {
		return nil, s.err
	}
	return &Result{}, nil
}

func newConsumer(t *testing.T, s settler) (*Consumer, *memoryStore) {
	t.Helper()
	reg, err := registry.NewEventRegistry(config.PubSubConfig{JobsTopic: "jobs", TransactionsTopic: "transactions"})
	require.NoError(t, err)
	store := &memoryStore{keys: map[string]bool{}}
	manager, err := idempotency.NewManager(store, time.Hour)
	require.NoError(t, err)
	return &Consumer{registry: reg, idempotency: manager, settler: s, logg: testLogger()}, store
}

func createdMessage(t *testing.T, eventID, txnID uuid.UUID) (map[string]string, []byte) {
	t.Helper()
	data, err := json.Marshal(payloads.TransactionCreatedEvent{TransactionID: txnID, StoreID: uuid.New()})
	require.NoError(t, err)
	body, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: eventID.String(), OccurredAt: time.Now().UTC(), Data: data})
	require.NoError(t, err)
	return map[string]string{
		"event_type":     string(enums.EventTransactionCreated),
		"aggregate_type": string(enums.AggregateTransaction),
		"aggregate_id":   txnID.String(),
	}, body
}

func TestConsumerSettlesOncePerEvent(t *testing.T) {
	s := &stubSettler{}
	c, _ := newConsumer(t, s)
	txnID := uuid.New()
	attrs, body := createdMessage(t, uuid.New(), txnID)

	require.False(t, c.process(context.Background(), "m1", attrs, body))
	require.False(t, c.process(context.Background(), "m2", attrs, body))
	require.Equal(t, []uuid.UUID{txnID}, s.calls)
}

func TestConsumerAcksDomainFailure(t *testing.T) {
	s := &stubSettler{err: pkgerrors.New(pkgerrors.CodeInsufficientBalance, "insufficient token balance")}
	c, store := newConsumer(t, s)
	attrs, body := createdMessage(t, uuid.New(), uuid.New())

	require.False(t, c.process(context.Background(), "m1", attrs, body))
	require.Len(t, store.keys, 1)
}

func TestConsumerNacksRetryableFailure(t *testing.T) {
	s := &stubSettler{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("conn reset"), "load transaction")}
	c, store := newConsumer(t, s)
	attrs, body := createdMessage(t, uuid.New(), uuid.New())

	require.True(t, c.process(context.Background(), "m1", attrs, body))
	require.Empty(t, store.keys)
}

func TestConsumerDropsForeignEvents(t *testing.T) {
	s := &stubSettler{}
	c, _ := newConsumer(t, s)
	data, _ := json.Marshal(payloads.JobEnqueuedEvent{JobID: uuid.New(), JobType: enums.JobTypeOrderCreate})
	body, _ := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), OccurredAt: time.Now().UTC(), Data: data})
	attrs := map[string]string{
		"event_type":     string(enums.EventJobEnqueued),
		"aggregate_type": string(enums.AggregateJob),
		"aggregate_id":   uuid.NewString(),
	}

	require.False(t, c.process(context.Background(), "m1", attrs, body))
	require.Empty(t, s.calls)
}
