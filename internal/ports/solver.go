package ports

import (
	"context"
	"errors"
	"time"
)

// ErrNoSolution is returned by Solve when no assignment satisfying all hard
// constraints was found within the time budget.
var ErrNoSolution = errors.New("routing solver: no solution")

// CostFunc prices a directed arc between two node indices (non-negative).
type CostFunc func(from, to int) float64

// DemandFunc returns the signed load change on arrival at a node.
type DemandFunc func(node int) int

// SearchParams bounds and steers a single search run.
type SearchParams struct {
	TimeBudget    time.Duration
	FirstSolution string // e.g. "parallel_cheapest_insertion"
	Metaheuristic string // e.g. "guided_local_search"
}

// VehicleRoute is one vehicle's raw assignment: the visited node sequence
// starting at the depot, the cumulative distance-dimension value at each
// visit (monotonically non-decreasing; includes waiting slack), and the
// cumulative value once the route ends.
type VehicleRoute struct {
	Visits   []int
	Cumul    []float64
	EndCumul float64
}

// Assignment is the raw solver output, one route per vehicle.
type Assignment struct {
	Routes []VehicleRoute
}

// RoutingSolver is the capability contract over an opaque vehicle-routing
// search engine. The builder and decoder depend only on this seam, never on
// a concrete engine's types, so any CP-based or metaheuristic engine can be
// substituted.
//
// A solver instance models exactly one problem: register callbacks and
// constraints, then call Solve once. Solve blocks until the time budget
// elapses and returns the best assignment found, or ErrNoSolution.
type RoutingSolver interface {
	SetCostCallback(fn CostFunc)
	SetDemandCallback(fn DemandFunc)

	// AddDistanceDimension declares the cumulative dimension the cost
	// callback accumulates along routes. Slack is the per-node waiting
	// allowance, capacity the maximum cumulative value per vehicle.
	AddDistanceDimension(name string, slack, capacity float64, startAtZero bool)

	// AddCapacityDimension declares the load dimension driven by the demand
	// callback, with a per-vehicle capacity vector.
	AddCapacityDimension(slack int, capacities []int, startAtZero bool)

	// AddPickupDelivery pairs two nodes: same vehicle for both, and the
	// cumulative distance value at pickup never exceeds that at delivery.
	AddPickupDelivery(pickup, delivery int)

	// RestrictVehicles limits which vehicles may visit a node. An empty
	// slice makes the node unservable (only a disjunction can absorb it).
	RestrictVehicles(node int, vehicles []int)

	// AddDisjunction makes the listed nodes optional at the stated penalty.
	AddDisjunction(nodes []int, penalty float64)

	// SetNodeRange bounds the cumulative value of a dimension at a node.
	SetNodeRange(dimension string, node int, low, high float64)

	// SetVehicleRange bounds the cumulative value of a dimension at a
	// vehicle's route start and end.
	SetVehicleRange(dimension string, vehicle int, low, high float64)

	Solve(ctx context.Context, params SearchParams) (*Assignment, error)
}

// SolverFactory builds a fresh solver for a problem of the given size.
// Problems are solved one-shot; nothing persists across invocations.
type SolverFactory func(nodeCount, vehicleCount, depot int) RoutingSolver
