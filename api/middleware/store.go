package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/api/responses"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
	"github.com/pujasera/pos-backend/pkg/logger"
)

// StoreHeader names the POS terminal's store.
const StoreHeader = "X-Store-Id"

// StoreScope reads the optional store header into the request context and
// the log fields. A malformed id is rejected.
func StoreScope(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(StoreHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store header"))
				return
			}
			ctx := WithStoreID(r.Context(), id.String())
			if logg != nil {
				ctx = logg.WithStoreID(ctx, id.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
