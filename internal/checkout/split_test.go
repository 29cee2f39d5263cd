package checkout

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/pujasera/pos-backend/pkg/types"
)

var (
	tenantA = uuid.MustParse("0b7a0c5e-4f1f-4d0b-9a51-2f2c6c3c0a01")
	tenantB = uuid.MustParse("7c1e3a2d-5b6f-4e8a-8c9d-0e1f2a3b4c02")
)

func TestSplitScenario(t *testing.T) {
	items := []types.OrderItem{
		{ProductID: "p1", Name: "Sate", Quantity: 2, UnitPrice: 10000, OriginTenantID: tenantA.String()},
		{ProductID: "p2", Name: "Es Teh", Quantity: 1, UnitPrice: 5000, OriginTenantID: tenantB.String()},
	}

	groups := Split(items)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if got := groups[tenantA].Subtotal; got != 20000 {
		t.Fatalf("tenant A subtotal: want 20000 got %v", got)
	}
	if got := groups[tenantB].Subtotal; got != 5000 {
		t.Fatalf("tenant B subtotal: want 5000 got %v", got)
	}
}

func TestSplitConservesTaggedSubtotal(t *testing.T) {
	items := []types.OrderItem{
		{ProductID: "p1", Quantity: 3, UnitPrice: 12500.5, OriginTenantID: tenantA.String()},
		{ProductID: "p2", Quantity: 1, UnitPrice: 999.99, OriginTenantID: tenantB.String()},
		{ProductID: "p3", Quantity: 2, UnitPrice: 4000, OriginTenantID: tenantA.String()},
		{ProductID: "svc", Quantity: 1, UnitPrice: 2000},
		{ProductID: "bad", Quantity: 1, UnitPrice: 700, OriginTenantID: "not-a-uuid"},
	}

	var total float64
	for _, g := range Split(items) {
		total += g.Subtotal
	}
	tagged := Subtotal(items[:3])
	if math.Abs(total-tagged) > 1e-6 {
		t.Fatalf("split subtotal %v does not equal tagged subtotal %v", total, tagged)
	}
}

func TestDroppedReturnsUntaggedLines(t *testing.T) {
	items := []types.OrderItem{
		{ProductID: "p1", Quantity: 1, UnitPrice: 1, OriginTenantID: tenantA.String()},
		{ProductID: "svc", Quantity: 1, UnitPrice: 2000},
		{ProductID: "nil", Quantity: 1, UnitPrice: 1, OriginTenantID: uuid.Nil.String()},
	}
	dropped := Dropped(items)
	if len(dropped) != 2 || dropped[0].ProductID != "svc" || dropped[1].ProductID != "nil" {
		t.Fatalf("unexpected dropped lines %+v", dropped)
	}
}

func TestSplitKeepsCartOrderWithinGroup(t *testing.T) {
	items := []types.OrderItem{
		{ProductID: "first", Quantity: 1, UnitPrice: 1, OriginTenantID: tenantA.String()},
		{ProductID: "other", Quantity: 1, UnitPrice: 1, OriginTenantID: tenantB.String()},
		{ProductID: "second", Quantity: 1, UnitPrice: 1, OriginTenantID: tenantA.String()},
	}
	group := Split(items)[tenantA]
	if group.Items[0].ProductID != "first" || group.Items[1].ProductID != "second" {
		t.Fatalf("cart order not preserved: %+v", group.Items)
	}
}

func TestSortedGroupsIsDeterministic(t *testing.T) {
	groups := Split([]types.OrderItem{
		{ProductID: "b", Quantity: 1, UnitPrice: 1, OriginTenantID: tenantB.String()},
		{ProductID: "a", Quantity: 1, UnitPrice: 1, OriginTenantID: tenantA.String()},
	})
	sorted := SortedGroups(groups)
	if sorted[0].TenantID != tenantA || sorted[1].TenantID != tenantB {
		t.Fatalf("groups not ordered by tenant id: %v, %v", sorted[0].TenantID, sorted[1].TenantID)
	}
}

func TestComputeTotalFloorsAtZero(t *testing.T) {
	if got := ComputeTotal(25000, 0, 2500, 1250); got != 28750 {
		t.Fatalf("want 28750 got %v", got)
	}
	if got := ComputeTotal(1000, 5000, 0, 0); got != 0 {
		t.Fatalf("negative total must floor at 0, got %v", got)
	}
}
