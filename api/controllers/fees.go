package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pujasera/pos-backend/api/responses"
	"github.com/pujasera/pos-backend/internal/fees"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
)

type feePreviewResponse struct {
	Total     float64       `json:"total"`
	FeeTokens float64       `json:"feeTokens"`
	Schedule  fees.Schedule `json:"schedule"`
}

// FeePreview quotes the platform fee for an order total using the same
// schedule and rounding as settlement.
func FeePreview(settings fees.ScheduleSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if settings == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fee settings unavailable"))
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("total"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "total required").WithDetails(map[string]any{"field": "total"}))
			return
		}
		total, err := strconv.ParseFloat(raw, 64)
		if err != nil || total < 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "total must be a non-negative number").WithDetails(map[string]any{"field": "total"}))
			return
		}

		loaded, err := settings.Load(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load platform settings"))
			return
		}
		schedule := loaded.Schedule.WithDefaults()
		responses.WriteSuccess(w, feePreviewResponse{
			Total:     total,
			FeeTokens: fees.ComputeFee(total, schedule),
			Schedule:  schedule,
		})
	}
}
