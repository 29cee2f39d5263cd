package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/internal/jobs"
	"github.com/pujasera/pos-backend/pkg/types"
)

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var env types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error
}

type recordingEnqueuer struct {
	jobs []jobs.Job
	id   uuid.UUID
	err  error
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, job jobs.Job) (uuid.UUID, error) {
	if e.err != nil {
		return uuid.Nil, e.err
	}
	e.jobs = append(e.jobs, job)
	if e.id == uuid.Nil {
		e.id = uuid.New()
	}
	return e.id, nil
}
