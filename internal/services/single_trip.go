package services

import (
	"context"

	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/platform/obs"
)

// SingleTripRequest plans one vehicle doing one trip. Orders without an
// explicit type default to deliveries.
type SingleTripRequest struct {
	Depot   string
	Orders  []domain.Order
	Vehicle domain.Vehicle

	DutyHours   float64 // max trip length, default 12
	HandoverMin float64 // per-stop customer handover, default 0
	AvgSpeedKmh float64 // default 50

	TimeBudgetSec int // search budget, default 180
}

// SingleTrip solves the one-vehicle round-trip variant. The trip always
// starts and ends at the depot and may at most span the duty length.
func (o *Orchestrator) SingleTrip(ctx context.Context, req SingleTripRequest) (_ *domain.Plan, err error) {
	defer obs.Time(ctx, "services.SingleTrip")(&err)

	if req.DutyHours <= 0 {
		req.DutyHours = 12
	}
	if req.AvgSpeedKmh <= 0 {
		req.AvgSpeedKmh = 50
	}
	applyHandover(req.Orders, req.HandoverMin)

	p, err := BuildProblem(ctx, BuildInput{
		Depot:    req.Depot,
		Orders:   req.Orders,
		Vehicles: []domain.Vehicle{req.Vehicle},
		Options: BuildOptions{
			AvgSpeedKmh: req.AvgSpeedKmh,
			RoundTrip:   true,
		},
	}, o.Provider)
	if err != nil {
		return nil, err
	}

	budget := timeBudget(len(req.Orders), req.TimeBudgetSec, 180, 300, 2)
	return o.solve(ctx, p, req.DutyHours*req.AvgSpeedKmh, searchParams(budget))
}

// applyHandover fills the uniform handover dwell on orders that do not carry
// their own.
func applyHandover(orders []domain.Order, handoverMin float64) {
	for i := range orders {
		if orders[i].HandoverMin == 0 {
			orders[i].HandoverMin = handoverMin
		}
	}
}
