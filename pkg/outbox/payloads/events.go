package payloads

import (
	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/enums"
)

// JobEnqueuedEvent tells the worker a queue entry is ready for processing.
type JobEnqueuedEvent struct {
	JobID   uuid.UUID     `json:"jobId"`
	JobType enums.JobType `json:"jobType"`
	// Redelivery marks events re-emitted by the stale job sweep.
	Redelivery bool `json:"redelivery,omitempty"`
}

// TransactionCreatedEvent fires when a hub order is written directly and
// still needs to be distributed to its tenants.
type TransactionCreatedEvent struct {
	TransactionID uuid.UUID `json:"transactionId"`
	StoreID       uuid.UUID `json:"storeId"`
}
