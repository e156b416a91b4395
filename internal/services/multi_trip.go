package services

import (
	"context"

	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/platform/obs"
)

// MultiTripRequest plans a fleet of vehicles, each doing one round trip
// bounded by a shared duty length.
type MultiTripRequest struct {
	Depot    string
	Orders   []domain.Order
	Vehicles []domain.Vehicle

	DutyHours   float64 // max trip length per vehicle, default 8
	HandoverMin float64 // per-stop customer handover, default 15
	AvgSpeedKmh float64 // default 50

	TimeBudgetSec int // search budget, default 1200
}

// MultiTrip solves the fleet variant without time windows.
func (o *Orchestrator) MultiTrip(ctx context.Context, req MultiTripRequest) (_ *domain.Plan, err error) {
	defer obs.Time(ctx, "services.MultiTrip")(&err)

	if req.DutyHours <= 0 {
		req.DutyHours = 8
	}
	if req.AvgSpeedKmh <= 0 {
		req.AvgSpeedKmh = 50
	}
	if req.HandoverMin == 0 {
		req.HandoverMin = 15
	}
	applyHandover(req.Orders, req.HandoverMin)

	p, err := BuildProblem(ctx, BuildInput{
		Depot:    req.Depot,
		Orders:   req.Orders,
		Vehicles: req.Vehicles,
		Options: BuildOptions{
			AvgSpeedKmh: req.AvgSpeedKmh,
			RoundTrip:   true,
		},
	}, o.Provider)
	if err != nil {
		return nil, err
	}

	budget := timeBudget(len(req.Orders), req.TimeBudgetSec, 1200, 1200, 3)
	return o.solve(ctx, p, req.DutyHours*req.AvgSpeedKmh, searchParams(budget))
}
