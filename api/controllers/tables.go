package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/api/responses"
	"github.com/pujasera/pos-backend/api/validators"
	"github.com/pujasera/pos-backend/internal/tables"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
	"github.com/pujasera/pos-backend/pkg/types"
)

// TableService creates tables and applies operator actions.
type TableService interface {
	Create(ctx context.Context, storeID uuid.UUID, name string, virtual bool) (*models.Table, error)
	Apply(ctx context.Context, id uuid.UUID, action tables.Action) (*models.Table, error)
}

type tableResponse struct {
	ID           uuid.UUID                 `json:"id"`
	StoreID      uuid.UUID                 `json:"storeId"`
	Name         string                    `json:"name"`
	Status       enums.TableStatus         `json:"status"`
	CurrentOrder *types.TableOrderSnapshot `json:"currentOrder,omitempty"`
	IsVirtual    bool                      `json:"isVirtual"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
}

func newTableResponse(t *models.Table) tableResponse {
	return tableResponse{
		ID:           t.ID,
		StoreID:      t.StoreID,
		Name:         t.Name,
		Status:       t.Status,
		CurrentOrder: t.CurrentOrder,
		IsVirtual:    t.IsVirtual,
		UpdatedAt:    t.UpdatedAt,
	}
}

type createTableRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Virtual bool   `json:"virtual"`
}

// CreateTable registers a physical or virtual table under a hub store.
func CreateTable(svc TableService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "table service unavailable"))
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireStoreMatch(r, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createTableRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		table, err := svc.Create(r.Context(), storeID, body.Name, body.Virtual)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newTableResponse(table))
	}
}

// ApplyTableAction moves a table through reserve, release, clean or clear.
func ApplyTableAction(svc TableService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "table service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "tableId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		action, ok := tables.ParseAction(strings.ToLower(chi.URLParam(r, "action")))
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown table action").
				WithDetails(map[string]any{"action": chi.URLParam(r, "action")}))
			return
		}

		table, err := svc.Apply(r.Context(), id, action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if table == nil {
			responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
			return
		}
		responses.WriteSuccess(w, newTableResponse(table))
	}
}
