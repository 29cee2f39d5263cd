package transactions

import "github.com/google/uuid"

// hubNamespace scopes hub ids derived from job ids. Changing it changes every
// derived id, so it is fixed forever.
var hubNamespace = uuid.MustParse("6f1c7a52-3d0e-5b8a-9c41-2a7d9e0b4f13")

// HubOrderID returns the hub record id for an order-create job. An explicit
// order id from the payload wins; otherwise the id is derived from the job id,
// so every redelivery of the same job addresses the same hub record.
func HubOrderID(jobID uuid.UUID, explicit *uuid.UUID) uuid.UUID {
	if explicit != nil && *explicit != uuid.Nil {
		return *explicit
	}
	return uuid.NewSHA1(hubNamespace, jobID[:])
}

// SubOrderID returns the tenant sub-order id for a hub order. Re-running the
// fan-out writes the same ids, which turns every sub-order write into an upsert.
func SubOrderID(hubID, tenantID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(hubID, tenantID[:])
}
