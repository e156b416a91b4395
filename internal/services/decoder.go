package services

import (
	"fmt"
	"strconv"

	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/ports"
)

// DecodePlan turns a raw solver assignment back into domain terms. Every
// dwell value the cost callback injected is subtracted again, so reported
// distances are pure travel regardless of the dwell knobs, and driver time
// is split into driving, customer handover and warehouse dwell.
func DecodePlan(p *domain.RoutingProblem, a *ports.Assignment) (*domain.Plan, error) {
	visitedRoute := make(map[int]int)

	plan := &domain.Plan{}
	for vehicle, route := range a.Routes {
		trip, err := decodeTrip(p, vehicle, route, visitedRoute)
		if err != nil {
			return nil, err
		}
		if trip == nil {
			continue
		}
		plan.Trips = append(plan.Trips, *trip)
		plan.OptimizedKm += trip.DistanceKm
	}
	plan.VehiclesUsed = len(plan.Trips)
	plan.OptimizedMin = p.MinutesFor(plan.OptimizedKm)

	dropped, err := droppedOrders(p, visitedRoute)
	if err != nil {
		return nil, err
	}
	plan.DroppedOrders = dropped

	plan.PossibleOrderings, plan.TriedOrderings = possibleOrderings(p.OrderCount())

	plan.InitialKm = baselineDistance(p)
	plan.InitialMin = p.MinutesFor(plan.InitialKm)
	if saved := plan.InitialKm - plan.OptimizedKm; saved > 0 {
		plan.SavedKm = saved
		plan.SavedMin = p.MinutesFor(saved)
	}

	return plan, nil
}

func decodeTrip(p *domain.RoutingProblem, vehicle int, route ports.VehicleRoute, visitedRoute map[int]int) (*domain.VehicleTrip, error) {
	if len(route.Visits) == 0 || route.Visits[0] != 0 {
		return nil, &domain.InvariantError{Msg: fmt.Sprintf("vehicle %d route does not start at the depot", vehicle)}
	}
	if len(route.Visits) == 1 {
		return nil, nil
	}
	if len(route.Cumul) != len(route.Visits) {
		return nil, &domain.InvariantError{Msg: fmt.Sprintf("vehicle %d cumul length mismatch", vehicle)}
	}

	trip := &domain.VehicleTrip{}
	load := 0
	capacity := p.VehicleCapacities[vehicle]

	for i, node := range route.Visits {
		if i > 0 {
			prev := route.Visits[i-1]
			trip.DistanceKm += p.Matrix[prev][node]
			if route.Cumul[i] < route.Cumul[i-1] {
				return nil, &domain.InvariantError{Msg: fmt.Sprintf("vehicle %d cumul decreases at visit %d", vehicle, i)}
			}
			dwell := p.InjectedDwell(prev, node)
			if customerFacing(p, node) {
				trip.HandoverMin += p.MinutesFor(dwell)
			} else {
				trip.PickupMin += p.MinutesFor(dwell)
			}
		}
		if node == 0 {
			continue
		}

		if _, seen := visitedRoute[node]; seen {
			return nil, &domain.InvariantError{Msg: fmt.Sprintf("node %d visited twice", node)}
		}
		visitedRoute[node] = vehicle

		load += p.Demand(node)
		if load < 0 {
			return nil, &domain.InvariantError{Msg: fmt.Sprintf("vehicle %d load goes negative at node %d", vehicle, node)}
		}
		if load > capacity {
			return nil, &domain.InvariantError{Msg: fmt.Sprintf("vehicle %d load %d exceeds capacity %d", vehicle, load, capacity)}
		}
		if load > trip.MaxLoad {
			trip.MaxLoad = load
		}

		trip.Operations = append(trip.Operations, domain.OperationRecord{
			OrderID:          p.Orders[domain.OrderIndex(node)].ID,
			Operation:        p.Nodes[node].Role,
			EstimatedTimeMin: p.MinutesFor(route.Cumul[i]),
		})
	}

	if load != 0 {
		return nil, &domain.InvariantError{Msg: fmt.Sprintf("vehicle %d ends with residual load %d", vehicle, load)}
	}

	trip.DistanceKm += p.Matrix[route.Visits[len(route.Visits)-1]][0]
	trip.DrivingMin = p.MinutesFor(trip.DistanceKm)
	trip.DutyCompletedMin = p.MinutesFor(route.EndCumul)

	return trip, nil
}

// customerFacing reports whether a node is the customer-side stop of its
// order, which decides whether its dwell counts as handover or as warehouse
// pickup time.
func customerFacing(p *domain.RoutingProblem, node int) bool {
	if node == 0 {
		return false
	}
	o := p.Orders[domain.OrderIndex(node)]
	odd := node%2 == 1
	if o.Type == domain.OrderPickup {
		return odd
	}
	return !odd
}

// droppedOrders lists orders the solver left unserved. An order is dropped
// only as a whole; a half-visited or split pair is a solver defect.
func droppedOrders(p *domain.RoutingProblem, visitedRoute map[int]int) ([]string, error) {
	var dropped []string
	for k, pair := range p.Pairs {
		pv, pickupVisited := visitedRoute[pair[0]]
		dv, deliveryVisited := visitedRoute[pair[1]]
		switch {
		case !pickupVisited && !deliveryVisited:
			dropped = append(dropped, p.Orders[k].ID)
		case pickupVisited != deliveryVisited:
			return nil, &domain.InvariantError{Msg: fmt.Sprintf("order %s has only one node visited", p.Orders[k].ID)}
		case pv != dv:
			return nil, &domain.InvariantError{Msg: fmt.Sprintf("order %s split across vehicles", p.Orders[k].ID)}
		}
	}
	return dropped, nil
}

// possibleOrderings sizes the search space for callers: the exact factorial
// below nine orders, a comparison everyone can picture above that, and a
// rough count of orderings the search realistically covered.
func possibleOrderings(orders int) (string, int) {
	thresholds := []int{10, 20, 30, 50, 100, 150}
	comparisons := []string{
		"Total Strands of hair in human's head",
		"Total Stars in the observable universe",
		"Number of Atoms in the human body",
		"Number of atoms in Earth.",
		"All Legal positions in the game of Go",
		"Number of atoms in Milky way galaxy",
	}

	idx := 0
	for idx < len(thresholds) && thresholds[idx] < orders {
		idx++
	}
	if idx == len(thresholds) {
		idx--
	}

	tried := (idx + 1) * 500
	if f, ok := factorialAtMost(orders, tried); ok {
		tried = f
	}

	if orders < 9 {
		f, _ := factorialAtMost(orders, 1<<30)
		return strconv.Itoa(f), tried
	}
	return comparisons[idx], tried
}

// factorialAtMost returns n! when it does not exceed limit, else ok=false.
func factorialAtMost(n, limit int) (int, bool) {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
		if f > limit {
			return 0, false
		}
	}
	return f, true
}

// baselineDistance is the naive single-driver walk used as the comparison
// figure: from the depot visit the customer-facing stop of every order in
// input order, then head back.
func baselineDistance(p *domain.RoutingProblem) float64 {
	total := 0.0
	last := 0
	for k, o := range p.Orders {
		curr := p.Pairs[k][1]
		if o.Type == domain.OrderPickup {
			curr = p.Pairs[k][0]
		}
		total += p.Matrix[last][curr]
		last = curr
	}
	total += p.Matrix[last][0]
	return total
}
