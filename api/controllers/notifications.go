package controllers

import (
	"net/http"

	"github.com/pujasera/pos-backend/api/responses"
	"github.com/pujasera/pos-backend/api/validators"
	"github.com/pujasera/pos-backend/internal/jobs"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
)

// SendNotification queues a WhatsApp message. "admin_group" as the recipient
// targets the configured admin group.
func SendNotification(enqueuer JobEnqueuer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if enqueuer == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "job queue unavailable"))
			return
		}

		var payload jobs.NotificationPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := enqueuer.Enqueue(r.Context(), jobs.NotificationSend{Payload: payload})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, acceptedResponse{JobID: id})
	}
}
