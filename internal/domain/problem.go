package domain

// RoutingProblem is the solver-ready model produced by the problem builder:
// doubled nodes, an augmented distance matrix, signed demands and every
// constraint expressed on a single numeric scale (kilometers).
//
// The problem is built fresh per solve call, read-only afterwards, and only
// observed by the solver through the ArcCost/Demand callbacks.
type RoutingProblem struct {
	Nodes  []Node
	Matrix [][]float64 // base travel distances, km; dim == len(Nodes)

	// Orders are the originating orders, in input order; node indices map
	// back to them via OrderIndex.
	Orders []Order

	// Pairs lists (pickup node, delivery node) index pairs, one per order.
	Pairs [][2]int

	// VehicleCapacities holds the effective capacity per vehicle.
	VehicleCapacities []int

	// DutyWindows holds per-vehicle duty windows in kilometers; empty when
	// the variant does not constrain duty time.
	DutyWindows []Window

	// AllowedVehicles restricts which vehicles may visit a node. A nil map
	// or missing entry means no restriction; an empty slice means no vehicle
	// qualifies and the node can only be dropped.
	AllowedVehicles map[int][]int

	// Penalty is the uniform disjunction penalty, derived per instance so it
	// exceeds any single achievable arc cost.
	Penalty float64

	AvgSpeedKmh    float64
	RoundTrip      bool
	RepeatHandover bool
	HasTimeWindows bool
}

// ArcCost is the cost-callback the solver optimizes over: base travel
// distance plus the dwell injected on arrival at the destination node.
//
// When repeat-handover is off, a transition with zero base distance (two
// consecutive stops at the same address) injects no dwell, so stacked orders
// at one location pay handover once rather than once per order. Returning to
// the depot never injects dwell.
func (p *RoutingProblem) ArcCost(from, to int) float64 {
	base := p.Matrix[from][to]
	return base + p.InjectedDwell(from, to)
}

// InjectedDwell returns the dwell portion of ArcCost for a transition.
// The decoder subtracts exactly this value to recover pure travel distance.
func (p *RoutingProblem) InjectedDwell(from, to int) float64 {
	if to == 0 {
		return 0
	}
	if !p.RepeatHandover && p.Matrix[from][to] == 0 {
		return 0
	}
	return p.Nodes[to].Extra
}

// Demand is the demand callback: the signed load change at a node.
func (p *RoutingProblem) Demand(node int) int { return p.Nodes[node].Demand }

// OrderCount returns the number of orders encoded in the graph.
func (p *RoutingProblem) OrderCount() int { return len(p.Orders) }

// MinutesFor converts a distance-equivalent value back to minutes.
func (p *RoutingProblem) MinutesFor(km float64) float64 {
	return km / p.AvgSpeedKmh * 60
}
