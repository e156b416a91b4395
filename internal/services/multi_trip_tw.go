package services

import (
	"context"

	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/platform/obs"
)

// TimeWindowRequest plans a fleet under per-order time windows, per-vehicle
// duty windows and optional storage-class compatibility.
type TimeWindowRequest struct {
	Depot    string
	Orders   []domain.Order
	Vehicles []domain.Vehicle

	// PickupDwellMin is the warehouse-side dwell per order (loading before a
	// delivery, unloading after a pickup).
	PickupDwellMin float64

	// Warehouse operating windows, minutes of the day; nil means all day.
	WarehousePickupWindow *domain.Window
	WarehouseDropWindow   *domain.Window

	AvgSpeedKmh float64 // default 50

	// OneWay drops the return leg to the depot from the objective.
	OneWay bool

	// RepeatHandover charges handover dwell again for consecutive stops at
	// the same address instead of once per address.
	RepeatHandover bool

	TimeBudgetSec int // search budget, default 1200
}

// MultiTripTimeWindows solves the fleet variant with time windows. The
// cumulative distance dimension doubles as the clock, so windows and duty
// spans arrive at the solver already converted to kilometers.
func (o *Orchestrator) MultiTripTimeWindows(ctx context.Context, req TimeWindowRequest) (_ *domain.Plan, err error) {
	defer obs.Time(ctx, "services.MultiTripTimeWindows")(&err)

	if req.AvgSpeedKmh <= 0 {
		req.AvgSpeedKmh = 50
	}

	p, err := BuildProblem(ctx, BuildInput{
		Depot:    req.Depot,
		Orders:   req.Orders,
		Vehicles: req.Vehicles,
		Options: BuildOptions{
			AvgSpeedKmh:           req.AvgSpeedKmh,
			PickupDwellMin:        req.PickupDwellMin,
			WarehousePickupWindow: req.WarehousePickupWindow,
			WarehouseDropWindow:   req.WarehouseDropWindow,
			UseTimeWindows:        true,
			RoundTrip:             !req.OneWay,
			RepeatHandover:        req.RepeatHandover,
		},
	}, o.Provider)
	if err != nil {
		return nil, err
	}

	budget := timeBudget(len(req.Orders), req.TimeBudgetSec, 1200, 1200, 3)
	return o.solve(ctx, p, 24*req.AvgSpeedKmh, searchParams(budget))
}
