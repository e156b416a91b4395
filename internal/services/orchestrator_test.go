package services

import (
	"context"
	"errors"
	"testing"

	"vrp-dispatch-service/internal/adapters/distance"
	"vrp-dispatch-service/internal/adapters/solver"
	"vrp-dispatch-service/internal/domain"
)

func newTestOrchestrator(provider *distance.MockMatrixProvider) *Orchestrator {
	return &Orchestrator{Provider: provider, NewSolver: solver.New}
}

func TestSingleTripServesAllOrders(t *testing.T) {
	provider := fullMock(5, "D", "A", "B", "C")

	req := SingleTripRequest{
		Depot: "D",
		Orders: []domain.Order{
			{ID: "o1", Source: "D", Destination: "A", Quantity: 1, Type: domain.OrderDelivery},
			{ID: "o2", Source: "D", Destination: "B", Quantity: 2, Type: domain.OrderDelivery},
			{ID: "o3", Source: "C", Destination: "D", Quantity: 1, Type: domain.OrderPickup},
		},
		Vehicle:       domain.Vehicle{Capacity: 10},
		TimeBudgetSec: 1,
	}

	plan, err := newTestOrchestrator(provider).SingleTrip(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.DroppedOrders) != 0 {
		t.Fatalf("dropped orders = %v, want none", plan.DroppedOrders)
	}
	if plan.VehiclesUsed != 1 {
		t.Fatalf("vehicles used = %d, want 1", plan.VehiclesUsed)
	}

	ops := 0
	for _, trip := range plan.Trips {
		ops += len(trip.Operations)
	}
	if ops != 6 {
		t.Fatalf("expected 6 operations (2 per order), got %d", ops)
	}

	if plan.OptimizedKm > plan.InitialKm {
		t.Fatalf("optimized %f km exceeds the naive baseline %f km", plan.OptimizedKm, plan.InitialKm)
	}
	if plan.SavedKm != plan.InitialKm-plan.OptimizedKm {
		t.Fatalf("saved = %f, want %f", plan.SavedKm, plan.InitialKm-plan.OptimizedKm)
	}
}

func TestSingleTripOversizedOrderIsInfeasible(t *testing.T) {
	provider := fullMock(5, "D", "A")

	// The single-trip variant may never drop an order, so an order no
	// vehicle can carry fails the whole solve.
	req := SingleTripRequest{
		Depot: "D",
		Orders: []domain.Order{
			{ID: "big", Source: "D", Destination: "A", Quantity: 50, Type: domain.OrderDelivery},
		},
		Vehicle:       domain.Vehicle{Capacity: 10},
		TimeBudgetSec: 1,
	}

	_, err := newTestOrchestrator(provider).SingleTrip(context.Background(), req)
	if !errors.Is(err, domain.ErrInfeasible) {
		t.Fatalf("got %v, want ErrInfeasible", err)
	}
}

func TestMultiTripOversizedOrderIsInfeasible(t *testing.T) {
	provider := fullMock(5, "D", "A")

	req := MultiTripRequest{
		Depot: "D",
		Orders: []domain.Order{
			{ID: "o1", Source: "D", Destination: "A", Quantity: 1, Type: domain.OrderDelivery},
			{ID: "big", Source: "D", Destination: "A", Quantity: 50, Type: domain.OrderDelivery},
		},
		Vehicles:      []domain.Vehicle{{Capacity: 10}, {Capacity: 10}},
		TimeBudgetSec: 1,
	}

	_, err := newTestOrchestrator(provider).MultiTrip(context.Background(), req)
	if !errors.Is(err, domain.ErrInfeasible) {
		t.Fatalf("got %v, want ErrInfeasible", err)
	}
}

func TestMultiTripSplitsLoadAcrossVehicles(t *testing.T) {
	provider := fullMock(5, "D", "A", "B")

	req := MultiTripRequest{
		Depot: "D",
		Orders: []domain.Order{
			{ID: "o1", Source: "D", Destination: "A", Quantity: 8, Type: domain.OrderDelivery},
			{ID: "o2", Source: "D", Destination: "B", Quantity: 8, Type: domain.OrderDelivery},
		},
		Vehicles: []domain.Vehicle{
			{Capacity: 10},
			{Capacity: 10},
		},
		// A 30 km trip cap: one round trip per order fits (10 km travel plus
		// the default 15' handover), serving both on one vehicle does not.
		DutyHours:     0.5,
		AvgSpeedKmh:   60,
		TimeBudgetSec: 1,
	}

	plan, err := newTestOrchestrator(provider).MultiTrip(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.DroppedOrders) != 0 {
		t.Fatalf("dropped orders = %v, want none", plan.DroppedOrders)
	}
	if plan.VehiclesUsed != 2 {
		t.Fatalf("vehicles used = %d, want 2", plan.VehiclesUsed)
	}
	for _, trip := range plan.Trips {
		if trip.MaxLoad > 10 {
			t.Fatalf("trip load %d exceeds capacity", trip.MaxLoad)
		}
	}
}

func TestMultiTripTimeWindowsRespectsOrderWindows(t *testing.T) {
	provider := fullMock(5, "D", "A", "B")

	// Speed 60: a 5 km leg is 5 minutes. o2 opens late, o1 closes early, so
	// o1 must be served first regardless of raw distance.
	req := TimeWindowRequest{
		Depot: "D",
		Orders: []domain.Order{
			{ID: "o1", Source: "D", Destination: "A", Quantity: 1, Type: domain.OrderDelivery,
				Window: &domain.Window{Start: 0, End: 30}},
			{ID: "o2", Source: "D", Destination: "B", Quantity: 1, Type: domain.OrderDelivery,
				Window: &domain.Window{Start: 120, End: 180}},
		},
		Vehicles:      []domain.Vehicle{{Capacity: 10, Duty: &domain.Window{Start: 0, End: 480}}},
		AvgSpeedKmh:   60,
		TimeBudgetSec: 1,
	}

	plan, err := newTestOrchestrator(provider).MultiTripTimeWindows(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.DroppedOrders) != 0 {
		t.Fatalf("dropped orders = %v, want none", plan.DroppedOrders)
	}

	var deliveries []string
	var times []float64
	for _, trip := range plan.Trips {
		for _, op := range trip.Operations {
			if op.Operation == domain.RoleDelivery {
				deliveries = append(deliveries, op.OrderID)
				times = append(times, op.EstimatedTimeMin)
			}
		}
	}
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", deliveries)
	}
	if deliveries[0] != "o1" || deliveries[1] != "o2" {
		t.Fatalf("delivery order = %v, want [o1 o2]", deliveries)
	}
	if times[0] > 30 {
		t.Fatalf("o1 delivered at minute %f, after its window closes", times[0])
	}
	if times[1] < 120 || times[1] > 180 {
		t.Fatalf("o2 delivered at minute %f, outside [120, 180]", times[1])
	}
}

func TestMultiTripTimeWindowsStorageKeepsOrderOffWrongVehicle(t *testing.T) {
	provider := fullMock(5, "D", "A")

	req := TimeWindowRequest{
		Depot: "D",
		Orders: []domain.Order{
			{ID: "cold", Source: "D", Destination: "A", Quantity: 1, Type: domain.OrderDelivery,
				Window: &domain.Window{Start: 0, End: 1440}, Storage: "frozen"},
		},
		Vehicles: []domain.Vehicle{
			{Capacity: 10, Storage: []string{"dry"}},
			{Capacity: 10, Storage: []string{"frozen"}},
		},
		TimeBudgetSec: 1,
	}

	plan, err := newTestOrchestrator(provider).MultiTripTimeWindows(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.DroppedOrders) != 0 {
		t.Fatalf("dropped orders = %v, want none", plan.DroppedOrders)
	}
	if len(plan.Trips) != 1 || len(plan.Trips[0].Operations) != 2 {
		t.Fatalf("expected the frozen vehicle to serve the order, got %+v", plan.Trips)
	}
}

func TestMultiTripTimeWindowsUnservableOrderIsDropped(t *testing.T) {
	provider := fullMock(5, "D", "A")

	req := TimeWindowRequest{
		Depot: "D",
		Orders: []domain.Order{
			{ID: "cold", Source: "D", Destination: "A", Quantity: 1, Type: domain.OrderDelivery,
				Window: &domain.Window{Start: 0, End: 1440}, Storage: "frozen"},
		},
		Vehicles:      []domain.Vehicle{{Capacity: 10, Storage: []string{"dry"}}},
		TimeBudgetSec: 1,
	}

	plan, err := newTestOrchestrator(provider).MultiTripTimeWindows(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.DroppedOrders) != 1 || plan.DroppedOrders[0] != "cold" {
		t.Fatalf("dropped = %v, want [cold]", plan.DroppedOrders)
	}
}
