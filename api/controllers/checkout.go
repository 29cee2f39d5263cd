package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/api/responses"
	"github.com/pujasera/pos-backend/api/validators"
	"github.com/pujasera/pos-backend/internal/jobs"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
)

// JobEnqueuer queues work for the worker.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job jobs.Job) (uuid.UUID, error)
}

type acceptedResponse struct {
	JobID uuid.UUID `json:"jobId"`
}

// Checkout accepts a cart and queues the order-create job that builds the hub
// order and its tenant sub-orders.
func Checkout(enqueuer JobEnqueuer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if enqueuer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "job queue unavailable"))
			return
		}

		var payload jobs.OrderCreatePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := requireStoreMatch(r, payload.PujaseraID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := enqueuer.Enqueue(r.Context(), jobs.OrderCreate{Payload: payload})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, acceptedResponse{JobID: id})
	}
}
