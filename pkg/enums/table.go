package enums

import "fmt"

// TableStatus is the seating state of a table.
type TableStatus string

const (
	TableStatusAvailable       TableStatus = "available"
	TableStatusReserved        TableStatus = "reserved"
	TableStatusOccupied        TableStatus = "occupied"
	TableStatusAwaitingCleanup TableStatus = "awaiting-cleanup"
)

var validTableStatuses = []TableStatus{
	TableStatusAvailable,
	TableStatusReserved,
	TableStatusOccupied,
	TableStatusAwaitingCleanup,
}

// IsValid reports whether the value is a known TableStatus.
func (s TableStatus) IsValid() bool {
	for _, candidate := range validTableStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseTableStatus converts raw input into a TableStatus.
func ParseTableStatus(value string) (TableStatus, error) {
	for _, candidate := range validTableStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid table status %q", value)
}
