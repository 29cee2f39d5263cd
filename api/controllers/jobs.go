package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/api/responses"
	"github.com/pujasera/pos-backend/api/validators"
	"github.com/pujasera/pos-backend/pkg/db/models"
	"github.com/pujasera/pos-backend/pkg/enums"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
)

// JobReader loads queue entries.
type JobReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.JobQueueEntry, error)
}

type jobStatusResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Status      enums.JobStatus `json:"status"`
	Error       *string         `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
}

// JobStatus lets clients poll a job accepted with 202.
func JobStatus(repo JobReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "job queue unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "jobId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entry, err := repo.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, jobStatusResponse{
			ID:          entry.ID,
			Type:        entry.Type,
			Status:      entry.Status,
			Error:       entry.Error,
			CreatedAt:   entry.CreatedAt,
			ProcessedAt: entry.ProcessedAt,
		})
	}
}
