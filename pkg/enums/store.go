package enums

import "fmt"

// StoreKind distinguishes a pujasera hub from the tenants operating inside it.
type StoreKind string

const (
	StoreKindHub        StoreKind = "hub"
	StoreKindTenant     StoreKind = "tenant"
	StoreKindStandalone StoreKind = "standalone"
)

var validStoreKinds = []StoreKind{
	StoreKindHub,
	StoreKindTenant,
	StoreKindStandalone,
}

// String implements fmt.Stringer.
func (s StoreKind) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreKind.
func (s StoreKind) IsValid() bool {
	for _, candidate := range validStoreKinds {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoreKind converts raw input into a StoreKind.
func ParseStoreKind(value string) (StoreKind, error) {
	for _, candidate := range validStoreKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store kind %q", value)
}

// UserRole is the role a user holds inside its store.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleCashier UserRole = "cashier"
)
