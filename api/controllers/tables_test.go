package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/internal/tables"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
)

type stubTableService struct {
	action  tables.Action
	virtual bool
	result  *models.Table
	err     error
}

func (s *stubTableService) Create(_ context.Context, storeID uuid.UUID, name string, virtual bool) (*models.Table, error) {
	s.virtual = virtual
	return &models.Table{ID: uuid.New(), StoreID: storeID, Name: name, Status: enums.TableStatusAvailable, IsVirtual: virtual}, nil
}

func (s *stubTableService) Apply(_ context.Context, id uuid.UUID, action tables.Action) (*models.Table, error) {
	s.action = action
	return s.result, s.err
}

func TestCreateTable(t *testing.T) {
	storeID := uuid.New()
	svc := &stubTableService{}

	req := newJSONRequest(t, http.MethodPost, "/", map[string]any{"name": "Meja 4", "virtual": true})
	req = withURLParams(req, map[string]string{"storeId": storeID.String()})
	rec := httptest.NewRecorder()
	CreateTable(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if !svc.virtual {
		t.Fatalf("virtual flag not forwarded")
	}
}

func TestApplyTableActionUnknown(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{
		"tableId": uuid.NewString(),
		"action":  "teleport",
	})
	rec := httptest.NewRecorder()
	ApplyTableAction(&stubTableService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestApplyTableActionInvalidTransition(t *testing.T) {
	svc := &stubTableService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "invalid table transition")}
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{
		"tableId": uuid.NewString(),
		"action":  "clean",
	})
	rec := httptest.NewRecorder()
	ApplyTableAction(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if svc.action != tables.ActionClean {
		t.Fatalf("expected clean action, got %q", svc.action)
	}
}

func TestApplyTableActionClearedVirtual(t *testing.T) {
	req := withURLParams(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{
		"tableId": uuid.NewString(),
		"action":  "CLEAR",
	})
	rec := httptest.NewRecorder()
	ApplyTableAction(&stubTableService{}, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
