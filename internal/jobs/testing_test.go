package jobs

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/db"
	"github.com/pujasera/pos-backend/pkg/db/dbtest"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/outbox"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "jobs-test", Output: io.Discard})
}

type testEnv struct {
	conn     *gorm.DB
	client   *db.Client
	repo     *Repository
	enqueuer *Enqueuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := dbtest.Open(t)
	client := db.NewFromConn(conn)
	repo := NewRepository(conn)
	enq, err := NewEnqueuer(client, repo, outbox.NewService(outbox.NewRepository(conn), testLogger()))
	require.NoError(t, err)
	return &testEnv{conn: conn, client: client, repo: repo, enqueuer: enq}
}

func (e *testEnv) insertRaw(t *testing.T, jobType string, payload any) uuid.UUID {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	entry := &models.JobQueueEntry{ID: uuid.New(), Type: jobType, Payload: raw, Status: enums.JobStatusPending}
	require.NoError(t, e.repo.Create(context.Background(), entry))
	return entry.ID
}

type recordingHandlers struct {
	mu    sync.Mutex
	calls []string
	err   error
	panic bool
}

func (h *recordingHandlers) record(name string) error {
	h.mu.Lock()
	h.calls = append(h.calls, name)
	h.mu.Unlock()
	if h.panic {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandlers) OrderCreate(ctx context.Context, meta Meta, job OrderCreate) error {
	return h.record("order")
}

func (h *recordingHandlers) NotificationSend(ctx context.Context, meta Meta, job NotificationSend) error {
	return h.record("notification")
}

func (h *recordingHandlers) TenantRegistration(ctx context.Context, meta Meta, job TenantRegistration) error {
	return h.record("tenant")
}

func (h *recordingHandlers) PujaseraRegistration(ctx context.Context, meta Meta, job PujaseraRegistration) error {
	return h.record("pujasera")
}

func validOrderPayload() OrderCreatePayload {
	return OrderCreatePayload{
		PujaseraID: uuid.New(),
		Customer:   &Customer{ID: "guest", Name: "Walk in"},
		Cart: []CartItem{
			{ProductID: uuid.NewString(), ProductName: "Bakso", Quantity: 2, Price: 10000, StoreID: uuid.NewString()},
		},
		Subtotal:    20000,
		TotalAmount: 20000,
	}
}
