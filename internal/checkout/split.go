package checkout

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// TenantGroup is the slice of a hub cart that belongs to one tenant.
type TenantGroup struct {
	TenantID   uuid.UUID
	TenantName string
	Items      types.OrderItems
	Subtotal   float64
}

// Split groups cart lines by their origin tenant. Lines without a parseable
// tenant tag are left out of every group; see Dropped.
func Split(items []types.OrderItem) map[uuid.UUID]TenantGroup {
	groups := make(map[uuid.UUID]TenantGroup)
	sums := make(map[uuid.UUID]decimal.Decimal)

	for _, item := range items {
		tenantID, ok := tenantOf(item)
		if !ok {
			continue
		}
		group := groups[tenantID]
		if group.TenantID == uuid.Nil {
			group.TenantID = tenantID
			group.TenantName = item.OriginTenantName
		}
		group.Items = append(group.Items, item)
		groups[tenantID] = group
		sums[tenantID] = sums[tenantID].Add(LineTotal(item))
	}

	for id, group := range groups {
		group.Subtotal, _ = sums[id].Float64()
		groups[id] = group
	}
	return groups
}

// SortedGroups returns the groups ordered by tenant id so writers always touch
// tenant rows in the same order.
func SortedGroups(groups map[uuid.UUID]TenantGroup) []TenantGroup {
	out := make([]TenantGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TenantID.String() < out[j].TenantID.String()
	})
	return out
}

// Dropped returns the lines Split leaves out because they carry no tenant tag.
func Dropped(items []types.OrderItem) []types.OrderItem {
	var dropped []types.OrderItem
	for _, item := range items {
		if _, ok := tenantOf(item); !ok {
			dropped = append(dropped, item)
		}
	}
	return dropped
}

// Subtotal sums unit price times quantity over items.
func Subtotal(items []types.OrderItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineTotal(item))
	}
	out, _ := sum.Float64()
	return out
}

// LineTotal is unitPrice * quantity for one cart line.
func LineTotal(item types.OrderItem) decimal.Decimal {
	return decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// ComputeTotal returns subtotal - discount + tax + service, floored at zero.
func ComputeTotal(subtotal, discount, tax, service float64) float64 {
	total := decimal.NewFromFloat(subtotal).
		Sub(decimal.NewFromFloat(discount)).
		Add(decimal.NewFromFloat(tax)).
		Add(decimal.NewFromFloat(service))
	if total.IsNegative() {
		return 0
	}
	out, _ := total.Float64()
	return out
}

func tenantOf(item types.OrderItem) (uuid.UUID, bool) {
	raw := strings.TrimSpace(item.OriginTenantID)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
