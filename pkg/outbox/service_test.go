package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db/dbtest"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	"github.com/pujasera/pos-backend/pkg/outbox/payloads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEmitWritesEnvelope(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)
	jobID := uuid.New()

	require.NoError(t, conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventJobEnqueued,
			AggregateType: enums.AggregateJob,
			AggregateID:   jobID,
			Actor:         &ActorRef{Kind: "api"},
			Data:          payloads.JobEnqueuedEvent{JobID: jobID, JobType: enums.JobTypeOrderCreate},
		})
	}))

	var rows []models.OutboxEvent
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, jobID, rows[0].AggregateID)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(rows[0].Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)

	var data payloads.JobEnqueuedEvent
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, enums.JobTypeOrderCreate, data.JobType)
}

func TestEmitRolledBackWithUnit(t *testing.T) {
	conn := dbtest.Open(t)
	svc := NewService(NewRepository(conn), nil)

	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventTransactionCreated,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   uuid.New(),
			Data:          payloads.TransactionCreatedEvent{},
		}); err != nil {
			return err
		}
		return errors.New("unit failed")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	now := time.Now().UTC()

	fresh := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventJobEnqueued, AggregateType: enums.AggregateJob, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	dead := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventJobEnqueued, AggregateType: enums.AggregateJob, AggregateID: uuid.New(), Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Insert(conn, fresh))
	require.NoError(t, repo.Insert(conn, dead))
	require.NoError(t, repo.MarkTerminalTx(conn, dead.ID, errors.New("boom"), 10))

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fresh.ID, rows[0].ID)

	require.NoError(t, repo.MarkFailedTx(conn, fresh.ID, errors.New("timeout")))
	require.NoError(t, repo.MarkPublishedTx(conn, fresh.ID))

	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	deleted, err := repo.DeletePublishedBefore(context.Background(), conn, now.Add(time.Hour), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
