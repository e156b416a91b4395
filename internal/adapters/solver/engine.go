package solver

import (
	"context"
	"math"
	"time"

	"vrp-dispatch-service/internal/ports"
)

// engine is the default in-process routing search. It seeds a solution with
// parallel cheapest insertion of pickup/delivery pairs, then improves it with
// pair relocation, intra-route segment reversal and re-insertion of dropped
// pairs until convergence or the time budget runs out.
//
// Constraint dimensions, vehicle domains, disjunctions and window ranges are
// all enforced inside route evaluation, so every intermediate solution the
// search holds is feasible.
type engine struct {
	nodeCount    int
	vehicleCount int
	depot        int

	cost   ports.CostFunc
	demand ports.DemandFunc

	distName      string
	distSlack     float64
	distCap       float64
	distStartZero bool
	hasDistance   bool

	capacities  []int
	hasCapacity bool

	pairs     [][2]int
	pickupOf  map[int]int // delivery node -> pickup node
	deliverOf map[int]int // pickup node -> delivery node

	allowed map[int]map[int]bool
	penalty map[int]float64

	nodeLow  map[int]float64
	nodeHigh map[int]float64
	vehLow   []float64
	vehHigh  []float64
}

// New builds a fresh solver for a problem of the given size.
func New(nodeCount, vehicleCount, depot int) ports.RoutingSolver {
	e := &engine{
		nodeCount:    nodeCount,
		vehicleCount: vehicleCount,
		depot:        depot,
		pickupOf:     make(map[int]int),
		deliverOf:    make(map[int]int),
		allowed:      make(map[int]map[int]bool),
		penalty:      make(map[int]float64),
		nodeLow:      make(map[int]float64),
		nodeHigh:     make(map[int]float64),
		vehLow:       make([]float64, vehicleCount),
		vehHigh:      make([]float64, vehicleCount),
	}
	for v := range e.vehHigh {
		e.vehHigh[v] = math.Inf(1)
	}
	return e
}

func (e *engine) SetCostCallback(fn ports.CostFunc)     { e.cost = fn }
func (e *engine) SetDemandCallback(fn ports.DemandFunc) { e.demand = fn }

func (e *engine) AddDistanceDimension(name string, slack, capacity float64, startAtZero bool) {
	e.distName = name
	e.distSlack = slack
	e.distCap = capacity
	e.distStartZero = startAtZero
	e.hasDistance = true
}

func (e *engine) AddCapacityDimension(slack int, capacities []int, startAtZero bool) {
	e.capacities = capacities
	e.hasCapacity = true
}

func (e *engine) AddPickupDelivery(pickup, delivery int) {
	e.pairs = append(e.pairs, [2]int{pickup, delivery})
	e.pickupOf[delivery] = pickup
	e.deliverOf[pickup] = delivery
}

func (e *engine) RestrictVehicles(node int, vehicles []int) {
	set := make(map[int]bool, len(vehicles))
	for _, v := range vehicles {
		set[v] = true
	}
	e.allowed[node] = set
}

func (e *engine) AddDisjunction(nodes []int, penalty float64) {
	for _, n := range nodes {
		e.penalty[n] = penalty
	}
}

func (e *engine) SetNodeRange(dimension string, node int, low, high float64) {
	if dimension != e.distName {
		return
	}
	e.nodeLow[node] = low
	e.nodeHigh[node] = high
}

func (e *engine) SetVehicleRange(dimension string, vehicle int, low, high float64) {
	if dimension != e.distName {
		return
	}
	e.vehLow[vehicle] = low
	e.vehHigh[vehicle] = high
}

// solution holds one feasible search state: customer-node sequences per
// vehicle (depot excluded) plus the set of unassigned pairs.
type solution struct {
	routes  [][]int
	dropped map[int]bool // pair index
}

func (s *solution) cloneRoute(v int) []int {
	return append([]int(nil), s.routes[v]...)
}

// Solve runs the search within params.TimeBudget. Seeding is always parallel
// cheapest insertion and improvement is the fixed local-search loop; other
// names in params.FirstSolution or params.Metaheuristic are not implemented
// and fall back to that strategy.
func (e *engine) Solve(ctx context.Context, params ports.SearchParams) (*ports.Assignment, error) {
	deadline := time.Now().Add(params.TimeBudget)

	sol := &solution{
		routes:  make([][]int, e.vehicleCount),
		dropped: make(map[int]bool, len(e.pairs)),
	}
	for i := range e.pairs {
		sol.dropped[i] = true
	}

	e.seed(ctx, sol, deadline)
	e.improve(ctx, sol, deadline)

	// Without a disjunction a node is mandatory; failing to place it means
	// the model has no feasible assignment.
	for pi := range sol.dropped {
		p := e.pairs[pi]
		if _, ok := e.penalty[p[0]]; !ok {
			return nil, ports.ErrNoSolution
		}
		if _, ok := e.penalty[p[1]]; !ok {
			return nil, ports.ErrNoSolution
		}
	}

	return e.assignment(sol), nil
}

// seed runs parallel cheapest insertion: repeatedly place the unassigned
// pair with the globally cheapest feasible insertion until none fits.
func (e *engine) seed(ctx context.Context, sol *solution, deadline time.Time) {
	for len(sol.dropped) > 0 {
		if ctx.Err() != nil || time.Now().After(deadline) {
			return
		}
		bestDelta := math.Inf(1)
		bestPair, bestVeh := -1, -1
		var bestRoute []int
		for pi := range sol.dropped {
			delta, veh, route := e.bestInsertion(sol, pi)
			if veh >= 0 && delta < bestDelta {
				bestDelta, bestPair, bestVeh, bestRoute = delta, pi, veh, route
			}
		}
		if bestPair < 0 {
			return
		}
		sol.routes[bestVeh] = bestRoute
		delete(sol.dropped, bestPair)
	}
}

// bestInsertion finds the cheapest feasible placement of a pair over all
// vehicles and position combinations. Returns vehicle -1 when nothing fits.
func (e *engine) bestInsertion(sol *solution, pairIdx int) (float64, int, []int) {
	p := e.pairs[pairIdx]
	bestDelta := math.Inf(1)
	bestVeh := -1
	var bestRoute []int

	for v := 0; v < e.vehicleCount; v++ {
		if !e.vehicleAllowed(p[0], v) || !e.vehicleAllowed(p[1], v) {
			continue
		}
		base := sol.routes[v]
		baseCost, ok := e.routeCost(v, base)
		if !ok {
			continue
		}
		for i := 0; i <= len(base); i++ {
			for j := i; j <= len(base); j++ {
				cand := insertPair(base, p[0], i, p[1], j)
				cost, ok := e.routeCost(v, cand)
				if !ok {
					continue
				}
				if delta := cost - baseCost; delta < bestDelta {
					bestDelta, bestVeh = delta, v
					bestRoute = cand
				}
			}
		}
	}
	return bestDelta, bestVeh, bestRoute
}

// insertPair places pickup at position i and delivery at position j (both
// relative to the original route, delivery after pickup).
func insertPair(route []int, pickup, i, delivery, j int) []int {
	out := make([]int, 0, len(route)+2)
	out = append(out, route[:i]...)
	out = append(out, pickup)
	out = append(out, route[i:j]...)
	out = append(out, delivery)
	out = append(out, route[j:]...)
	return out
}

// improve runs local search passes until a full pass yields no improvement
// or the deadline passes.
func (e *engine) improve(ctx context.Context, sol *solution, deadline time.Time) {
	for {
		if ctx.Err() != nil || time.Now().After(deadline) {
			return
		}
		improved := e.reinsertDropped(sol)
		improved = e.relocatePairs(ctx, sol, deadline) || improved
		improved = e.reverseSegments(ctx, sol, deadline) || improved
		if !improved {
			return
		}
	}
}

func (e *engine) reinsertDropped(sol *solution) bool {
	improved := false
	for pi := range sol.dropped {
		delta, veh, route := e.bestInsertion(sol, pi)
		if veh < 0 {
			continue
		}
		// Serving the pair beats paying both node penalties. A pair without
		// a disjunction is mandatory and is inserted whenever it fits.
		threshold := math.Inf(1)
		p0, ok0 := e.penalty[e.pairs[pi][0]]
		p1, ok1 := e.penalty[e.pairs[pi][1]]
		if ok0 && ok1 {
			threshold = p0 + p1
		}
		if delta < threshold {
			sol.routes[veh] = route
			delete(sol.dropped, pi)
			improved = true
		}
	}
	return improved
}

// relocatePairs removes each served pair and re-inserts it at its globally
// cheapest position, accepting strict improvements.
func (e *engine) relocatePairs(ctx context.Context, sol *solution, deadline time.Time) bool {
	improved := false
	for pi, p := range e.pairs {
		if sol.dropped[pi] {
			continue
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			return improved
		}
		home := e.routeOf(sol, p[0])
		if home < 0 {
			continue
		}
		origRoute := sol.cloneRoute(home)
		origCost, _ := e.routeCost(home, origRoute)

		stripped := removeNodes(origRoute, p[0], p[1])
		strippedCost, ok := e.routeCost(home, stripped)
		if !ok {
			continue
		}

		sol.routes[home] = stripped
		delta, veh, route := e.bestInsertion(sol, pi)
		removal := strippedCost - origCost
		if veh >= 0 && removal+delta < -1e-9 {
			sol.routes[veh] = route
			improved = true
			continue
		}
		sol.routes[home] = origRoute
	}
	return improved
}

// reverseSegments is 2-opt within each route; evaluation rejects reversals
// that put a delivery ahead of its pickup.
func (e *engine) reverseSegments(ctx context.Context, sol *solution, deadline time.Time) bool {
	improved := false
	for v := 0; v < e.vehicleCount; v++ {
		route := sol.routes[v]
		if len(route) < 3 {
			continue
		}
		cost, ok := e.routeCost(v, route)
		if !ok {
			continue
		}
		for i := 0; i < len(route)-1; i++ {
			for j := i + 1; j < len(route); j++ {
				if ctx.Err() != nil || time.Now().After(deadline) {
					return improved
				}
				cand := reverseSegment(route, i, j)
				candCost, ok := e.routeCost(v, cand)
				if ok && candCost < cost-1e-9 {
					route, cost = cand, candCost
					sol.routes[v] = cand
					improved = true
				}
			}
		}
	}
	return improved
}

func reverseSegment(route []int, i, j int) []int {
	out := append([]int(nil), route...)
	for l, r := i, j; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

func removeNodes(route []int, a, b int) []int {
	out := make([]int, 0, len(route))
	for _, n := range route {
		if n != a && n != b {
			out = append(out, n)
		}
	}
	return out
}

func (e *engine) routeOf(sol *solution, node int) int {
	for v, route := range sol.routes {
		for _, n := range route {
			if n == node {
				return v
			}
		}
	}
	return -1
}

func (e *engine) vehicleAllowed(node, vehicle int) bool {
	set, ok := e.allowed[node]
	if !ok {
		return true
	}
	return set[vehicle]
}

// routeCost evaluates a route for vehicle v and returns the sum of arc costs
// (excluding waiting), or ok=false when any constraint fails.
func (e *engine) routeCost(v int, route []int) (float64, bool) {
	eval := e.evaluate(v, route)
	return eval.cost, eval.ok
}

type evaluation struct {
	ok    bool
	cost  float64   // sum of arc costs, depot to depot
	cumul []float64 // dimension value per visit, depot start included
	end   float64   // dimension value at route end
}

func (e *engine) evaluate(v int, route []int) evaluation {
	start := 0.0
	if e.hasDistance && !e.distStartZero {
		start = e.vehLow[v]
	}
	cumul := make([]float64, 0, len(route)+1)
	cumul = append(cumul, start)

	cost := 0.0
	at := start
	load := 0
	prev := e.depot
	seenPickup := make(map[int]bool, len(route))

	for _, node := range route {
		if !e.vehicleAllowed(node, v) {
			return evaluation{}
		}
		if pickup, isDelivery := e.pickupOf[node]; isDelivery && !seenPickup[pickup] {
			return evaluation{}
		}
		if _, isPickup := e.deliverOf[node]; isPickup {
			seenPickup[node] = true
		}

		arc := e.cost(prev, node)
		cost += arc
		at += arc

		if e.hasDistance {
			if low, ok := e.nodeLow[node]; ok && at < low {
				if low-at > e.distSlack {
					return evaluation{}
				}
				at = low
			}
			if high, ok := e.nodeHigh[node]; ok && at > high {
				return evaluation{}
			}
			if at > e.distCap {
				return evaluation{}
			}
		}

		if e.hasCapacity {
			load += e.demand(node)
			if load < 0 || load > e.capacities[v] {
				return evaluation{}
			}
		}

		cumul = append(cumul, at)
		prev = node
	}

	if load != 0 {
		return evaluation{}
	}

	if len(route) > 0 {
		arc := e.cost(prev, e.depot)
		cost += arc
		at += arc
	}
	if e.hasDistance {
		if at > e.distCap {
			return evaluation{}
		}
		if at < e.vehLow[v] {
			if e.vehLow[v]-at > e.distSlack {
				return evaluation{}
			}
			at = e.vehLow[v]
		}
		if at > e.vehHigh[v] {
			return evaluation{}
		}
	}

	return evaluation{ok: true, cost: cost, cumul: cumul, end: at}
}

func (e *engine) assignment(sol *solution) *ports.Assignment {
	a := &ports.Assignment{Routes: make([]ports.VehicleRoute, e.vehicleCount)}
	for v := 0; v < e.vehicleCount; v++ {
		eval := e.evaluate(v, sol.routes[v])
		visits := make([]int, 0, len(sol.routes[v])+1)
		visits = append(visits, e.depot)
		visits = append(visits, sol.routes[v]...)
		a.Routes[v] = ports.VehicleRoute{
			Visits:   visits,
			Cumul:    eval.cumul,
			EndCumul: eval.end,
		}
	}
	return a
}
