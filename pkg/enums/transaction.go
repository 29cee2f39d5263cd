package enums

import "fmt"

// TransactionStatus tracks an order record from creation to settlement.
type TransactionStatus string

const (
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusPaid       TransactionStatus = "paid"
	TransactionStatusUnpaid     TransactionStatus = "unpaid"
	TransactionStatusCancelled  TransactionStatus = "cancelled"
	TransactionStatusFailed     TransactionStatus = "failed"
)

var validTransactionStatuses = []TransactionStatus{
	TransactionStatusProcessing,
	TransactionStatusCompleted,
	TransactionStatusPaid,
	TransactionStatusUnpaid,
	TransactionStatusCancelled,
	TransactionStatusFailed,
}

// IsValid reports whether the value is a known TransactionStatus.
func (s TransactionStatus) IsValid() bool {
	for _, candidate := range validTransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTransactionStatus converts raw input into a TransactionStatus.
func ParseTransactionStatus(value string) (TransactionStatus, error) {
	for _, candidate := range validTransactionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction status %q", value)
}

// KitchenStatus is the per-tenant preparation state kept on hub orders.
type KitchenStatus string

const (
	KitchenStatusPending KitchenStatus = "pending"
	KitchenStatusReady   KitchenStatus = "ready"
	KitchenStatusServed  KitchenStatus = "served"
)

var kitchenStatusOrder = map[KitchenStatus]int{
	KitchenStatusPending: 0,
	KitchenStatusReady:   1,
	KitchenStatusServed:  2,
}

// IsValid reports whether the value is a known KitchenStatus.
func (k KitchenStatus) IsValid() bool {
	_, ok := kitchenStatusOrder[k]
	return ok
}

// Follows reports whether a tenant may move from prev to k. Kitchen status
// only moves forward; repeating the current status is allowed.
func (k KitchenStatus) Follows(prev KitchenStatus) bool {
	from, okFrom := kitchenStatusOrder[prev]
	to, okTo := kitchenStatusOrder[k]
	return okFrom && okTo && to >= from
}
