package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/pkg/security"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	if len(password) < 8 {
		return "", security.ErrWeakPassword
	}
	return "hashed:" + password, nil
}

func registrationBody() map[string]any {
	return map[string]any{
		"email":             " Owner@Example.com ",
		"password":          "rahasia123",
		"ownerName":         "Dewi",
		"storeName":         "Bakso Dewi",
		"pujaseraGroupSlug": "food-court-a",
	}
}

func TestRegisterTenantQueuesHashedPayload(t *testing.T) {
	enq := &recordingEnqueuer{}
	req := withURLParams(newJSONRequest(t, http.MethodPost, "/", registrationBody()), map[string]string{"kind": "tenant"})
	rec := httptest.NewRecorder()
	Register(enq, fakeHasher{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(enq.jobs) != 1 {
		t.Fatalf("expected one queued job, got %d", len(enq.jobs))
	}
	job, ok := enq.jobs[0].(jobs.TenantRegistration)
	if !ok {
		t.Fatalf("expected tenant registration, got %T", enq.jobs[0])
	}
	if job.Payload.PasswordHash != "hashed:rahasia123" {
		t.Fatalf("expected hashed password, got %q", job.Payload.PasswordHash)
	}
	if job.Payload.Email != "owner@example.com" {
		t.Fatalf("email not normalized: %q", job.Payload.Email)
	}
	if strings.Contains(rec.Body.String(), "rahasia123") {
		t.Fatalf("password leaked into response")
	}
}

func TestRegisterPujaseraKind(t *testing.T) {
	enq := &recordingEnqueuer{}
	req := withURLParams(newJSONRequest(t, http.MethodPost, "/", registrationBody()), map[string]string{"kind": "pujasera"})
	rec := httptest.NewRecorder()
	Register(enq, fakeHasher{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(enq.jobs) != 1 {
		t.Fatalf("expected one queued job, got %d", len(enq.jobs))
	}
	if _, ok := enq.jobs[0].(jobs.PujaseraRegistration); !ok {
		t.Fatalf("expected pujasera registration, got %T", enq.jobs[0])
	}
}

func TestRegisterUnknownKind(t *testing.T) {
	req := withURLParams(newJSONRequest(t, http.MethodPost, "/", registrationBody()), map[string]string{"kind": "vendor"})
	rec := httptest.NewRecorder()
	Register(&recordingEnqueuer{}, fakeHasher{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	body := registrationBody()
	body["password"] = "short"
	enq := &recordingEnqueuer{}
	req := withURLParams(newJSONRequest(t, http.MethodPost, "/", body), map[string]string{"kind": "tenant"})
	rec := httptest.NewRecorder()
	Register(enq, fakeHasher{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if len(enq.jobs) != 0 {
		t.Fatalf("nothing should be queued")
	}
}

func TestRegisterTrimsNames(t *testing.T) {
	body := registrationBody()
	body["ownerName"] = "  Dewi  "
	body["storeName"] = "\tBakso Dewi "
	enq := &recordingEnqueuer{}
	req := withURLParams(newJSONRequest(t, http.MethodPost, "/", body), map[string]string{"kind": "tenant"})
	rec := httptest.NewRecorder()
	Register(enq, fakeHasher{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rec.Code, rec.Body.String())
	}
	job := enq.jobs[0].(jobs.TenantRegistration)
	if job.Payload.OwnerName != "Dewi" || job.Payload.StoreName != "Bakso Dewi" {
		t.Fatalf("names not trimmed: %q %q", job.Payload.OwnerName, job.Payload.StoreName)
	}
}
