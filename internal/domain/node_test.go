package domain

import "testing"

func TestRoleOf(t *testing.T) {
	if RoleOf(0) != RoleWarehouse {
		t.Fatal("node 0 must be the warehouse")
	}
	if RoleOf(1) != RolePickup || RoleOf(3) != RolePickup {
		t.Fatal("odd nodes must be pickups")
	}
	if RoleOf(2) != RoleDelivery || RoleOf(4) != RoleDelivery {
		t.Fatal("even nodes must be deliveries")
	}
}

func TestOrderIndex(t *testing.T) {
	cases := [][2]int{{1, 0}, {2, 0}, {3, 1}, {4, 1}, {7, 3}, {8, 3}}
	for _, c := range cases {
		if got := OrderIndex(c[0]); got != c[1] {
			t.Fatalf("OrderIndex(%d) = %d, want %d", c[0], got, c[1])
		}
	}
}

func TestVehicleEffectiveCapacity(t *testing.T) {
	v := Vehicle{Capacity: 100, Utilization: 0.8}
	if got := v.EffectiveCapacity(); got != 80 {
		t.Fatalf("effective capacity = %d, want 80", got)
	}

	full := Vehicle{Capacity: 100}
	if got := full.EffectiveCapacity(); got != 100 {
		t.Fatalf("effective capacity without utilization = %d, want 100", got)
	}
}

func TestVehicleSupports(t *testing.T) {
	v := Vehicle{Capacity: 10, Storage: []string{"chilled", "frozen"}}
	if !v.Supports("frozen") {
		t.Fatal("expected frozen to be supported")
	}
	if v.Supports("dry") {
		t.Fatal("did not expect dry to be supported")
	}
}

func TestArcCostDwellInjection(t *testing.T) {
	p := &RoutingProblem{
		Nodes: []Node{
			{Index: 0},
			{Index: 1, Extra: 5},
			{Index: 2, Extra: 3},
		},
		Matrix: [][]float64{
			{0, 10, 4},
			{10, 0, 0},
			{4, 0, 0},
		},
		AvgSpeedKmh: 50,
	}

	if got := p.ArcCost(0, 1); got != 15 {
		t.Fatalf("arc 0->1 = %f, want 15 (10 travel + 5 dwell)", got)
	}
	// Returning to the depot never injects dwell.
	if got := p.ArcCost(1, 0); got != 10 {
		t.Fatalf("arc 1->0 = %f, want 10", got)
	}
	// Zero-distance transition skips dwell unless repeat handover is on.
	if got := p.ArcCost(1, 2); got != 0 {
		t.Fatalf("arc 1->2 = %f, want 0", got)
	}
	p.RepeatHandover = true
	if got := p.ArcCost(1, 2); got != 3 {
		t.Fatalf("arc 1->2 with repeat handover = %f, want 3", got)
	}
}
