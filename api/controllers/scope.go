package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pujasera/pos-backend/api/middleware"
	pkgerrors "github.com/pujasera/pos-backend/pkg/errors"
)

// scopedStoreID returns the store from the X-Store-Id header, if any.
func scopedStoreID(r *http.Request) (uuid.UUID, bool) {
	raw := middleware.StoreIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// requireStoreMatch rejects requests whose body targets a different store
// than the one the device is scoped to.
func requireStoreMatch(r *http.Request, storeID uuid.UUID) error {
	scoped, ok := scopedStoreID(r)
	if !ok || scoped == storeID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "store scope mismatch").WithDetails(map[string]any{
		"scopedStoreId": scoped.String(),
		"storeId":       storeID.String(),
	})
}
