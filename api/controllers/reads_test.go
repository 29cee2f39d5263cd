package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/internal/fees"
	"github.com/pujasera/pos-backend/internal/stores"
	"github.com/pujasera/pos-backend/pkg/config"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
)

type stubJobReader struct {
	entry *models.JobQueueEntry
	err   error
}

func (s stubJobReader) Get(context.Context, uuid.UUID) (*models.JobQueueEntry, error) {
	return s.entry, s.err
}

func TestJobStatus(t *testing.T) {
	id := uuid.New()
	msg := "tenant not found"
	done := time.Now().UTC()
	reader := stubJobReader{entry: &models.JobQueueEntry{
		ID:          id,
		Type:        string(enums.JobTypeOrderCreate),
		Status:      enums.JobStatusFailed,
		Error:       &msg,
		ProcessedAt: &done,
	}}

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"jobId": id.String()})
	rec := httptest.NewRecorder()
	JobStatus(reader, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data jobStatusResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Status != enums.JobStatusFailed || envelope.Data.Error == nil || *envelope.Data.Error != msg {
		t.Fatalf("unexpected job status %+v", envelope.Data)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	reader := stubJobReader{err: pkgerrors.New(pkgerrors.CodeNotFound, "job not found")}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"jobId": uuid.NewString()})
	rec := httptest.NewRecorder()
	JobStatus(reader, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestFeePreviewMatchesComputeFee(t *testing.T) {
	source := fees.StaticSource{Schedule: fees.DefaultSchedule()}

	rec := httptest.NewRecorder()
	FeePreview(source, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/fees/preview?total=150000", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data feePreviewResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := fees.ComputeFee(150000, fees.DefaultSchedule()); envelope.Data.FeeTokens != want {
		t.Fatalf("expected %v got %v", want, envelope.Data.FeeTokens)
	}
}

func TestFeePreviewRejectsBadTotal(t *testing.T) {
	for _, query := range []string{"", "?total=abc", "?total=-1"} {
		rec := httptest.NewRecorder()
		FeePreview(fees.StaticSource{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/fees/preview"+query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: expected 400 got %d", query, rec.Code)
		}
	}
}

type stubStoreService struct {
	dto   *stores.StoreDTO
	group []stores.StoreDTO
	err   error
}

func (s stubStoreService) GetByID(context.Context, uuid.UUID) (*stores.StoreDTO, error) {
	return s.dto, s.err
}

func (s stubStoreService) ListGroup(context.Context, uuid.UUID) ([]stores.StoreDTO, error) {
	return s.group, s.err
}

func TestStoreProfile(t *testing.T) {
	id := uuid.New()
	svc := stubStoreService{dto: &stores.StoreDTO{ID: id, Name: "Pujasera Melati", Kind: enums.StoreKindHub}}

	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"storeId": id.String()})
	rec := httptest.NewRecorder()
	StoreProfile(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data stores.StoreDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.ID != id {
		t.Fatalf("expected id %s got %s", id, envelope.Data.ID)
	}
}

func TestStoreGroupNotFound(t *testing.T) {
	svc := stubStoreService{err: pkgerrors.New(pkgerrors.CodeNotFound, "store not found")}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"storeId": uuid.NewString()})
	rec := httptest.NewRecorder()
	StoreGroup(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{}

	rec := httptest.NewRecorder()
	HealthReady(cfg, stubPinger{}, stubPinger{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, stubPinger{}, stubPinger{err: errors.New("redis down")}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}
