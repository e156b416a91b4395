package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/ports"
)

// Dimension names registered on the solver.
const (
	DimDistance = "distance"
	DimCapacity = "capacity"
)

// Orchestrator runs full solve invocations: build the problem, wire the
// solver, search, decode. One instance serves all three variants and is safe
// for concurrent use; every invocation builds its own problem and solver.
type Orchestrator struct {
	Provider  ports.MatrixProvider
	NewSolver ports.SolverFactory
}

func (o *Orchestrator) solve(ctx context.Context, p *domain.RoutingProblem, distanceCap float64, params ports.SearchParams) (*domain.Plan, error) {
	s := o.NewSolver(len(p.Nodes), len(p.VehicleCapacities), 0)
	s.SetCostCallback(p.ArcCost)
	s.SetDemandCallback(p.Demand)

	if p.HasTimeWindows {
		// Cumulative distance doubles as the clock. Slack lets a vehicle wait
		// for a window to open anywhere on the horizon, and routes may start
		// mid-day, so the start cumul floats.
		horizon := 24 * p.AvgSpeedKmh
		s.AddDistanceDimension(DimDistance, horizon, horizon, false)
		for _, n := range p.Nodes[1:] {
			s.SetNodeRange(DimDistance, n.Index, n.Window.Start, n.Window.End)
		}
		for v, d := range p.DutyWindows {
			s.SetVehicleRange(DimDistance, v, d.Start, d.End)
		}
	} else {
		s.AddDistanceDimension(DimDistance, 0, distanceCap, true)
	}

	s.AddCapacityDimension(0, p.VehicleCapacities, true)

	for _, pair := range p.Pairs {
		s.AddPickupDelivery(pair[0], pair[1])
	}
	for node, vehicles := range p.AllowedVehicles {
		s.RestrictVehicles(node, vehicles)
	}
	// Only the time-window variant may drop orders. Each of its nodes is
	// individually optional; dropping one half of a pair forces the other
	// half out too via the pairing constraint. The plain variants register
	// no disjunctions, so an unplaceable order makes the whole model
	// infeasible.
	if p.HasTimeWindows {
		for _, n := range p.Nodes[1:] {
			s.AddDisjunction([]int{n.Index}, p.Penalty)
		}
	}

	a, err := s.Solve(ctx, params)
	if err != nil {
		if errors.Is(err, ports.ErrNoSolution) {
			return nil, domain.ErrInfeasible
		}
		return nil, fmt.Errorf("routing search: %w", err)
	}

	return DecodePlan(p, a)
}

func searchParams(budget time.Duration) ports.SearchParams {
	return ports.SearchParams{
		TimeBudget:    budget,
		FirstSolution: "parallel_cheapest_insertion",
		Metaheuristic: "guided_local_search",
	}
}

// timeBudget clamps the user budget by a hard ceiling and a per-order scale,
// so small instances return fast and large ones cannot run away.
func timeBudget(orders int, userSec, defaultSec, ceilingSec, perOrderSec int) time.Duration {
	if userSec <= 0 {
		userSec = defaultSec
	}
	budget := ceilingSec
	if scaled := perOrderSec * orders; scaled < budget {
		budget = scaled
	}
	if userSec < budget {
		budget = userSec
	}
	if budget < 1 {
		budget = 1
	}
	return time.Duration(budget) * time.Second
}
