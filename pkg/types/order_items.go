package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// OrderItem is one cart line as recorded on a transaction.
type OrderItem struct {
	ProductID        string  `json:"productId"`
	Name             string  `json:"name"`
	Quantity         int     `json:"quantity"`
	UnitPrice        float64 `json:"unitPrice"`
	Notes            string  `json:"notes,omitempty"`
	OriginTenantID   string  `json:"originTenantId,omitempty"`
	OriginTenantName string  `json:"originTenantName,omitempty"`
}

// OrderItems is persisted as a JSONB array, preserving cart order.
type OrderItems []OrderItem

// Value marshals the items into JSON for Postgres.
func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSONB into the slice.
func (o *OrderItems) Scan(value interface{}) error {
	raw, err := jsonBytes("order items", value)
	if err != nil || raw == nil {
		*o = nil
		return err
	}
	var items OrderItems
	if err := json.Unmarshal(raw, &items); err != nil {
		return err
	}
	*o = items
	return nil
}

// TenantStatusMap holds the per-tenant kitchen status of a hub order.
type TenantStatusMap map[string]string

// Value marshals the map into JSON; a nil map is stored as NULL.
func (m TenantStatusMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSONB into the map.
func (m *TenantStatusMap) Scan(value interface{}) error {
	raw, err := jsonBytes("tenant status map", value)
	if err != nil || raw == nil {
		*m = nil
		return err
	}
	result := make(TenantStatusMap)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// TableOrderSnapshot is the copy of the current order attached to an occupied table.
type TableOrderSnapshot struct {
	TransactionID string     `json:"transactionId"`
	ReceiptNumber int64      `json:"receiptNumber"`
	CustomerName  string     `json:"customerName,omitempty"`
	Items         OrderItems `json:"items"`
	TotalAmount   float64    `json:"totalAmount"`
	PlacedAt      time.Time  `json:"placedAt"`
}

// Value marshals the snapshot into JSON.
func (s TableOrderSnapshot) Value() (driver.Value, error) {
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSONB into the snapshot.
func (s *TableOrderSnapshot) Scan(value interface{}) error {
	raw, err := jsonBytes("table order snapshot", value)
	if err != nil {
		return err
	}
	if raw == nil {
		*s = TableOrderSnapshot{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

func jsonBytes(kind string, value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("%s: unsupported scan type %T", kind, value)
	}
}
