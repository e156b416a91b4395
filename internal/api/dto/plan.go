package dto

import "vrp-dispatch-service/internal/domain"

type OperationResponse struct {
	OrderID          string  `json:"order_id"`
	Operation        string  `json:"operation"` // "pickup" or "deliver"
	EstimatedTimeMin float64 `json:"estimated_time_min"`
}

type TripResponse struct {
	Route            []OperationResponse `json:"route"`
	DistanceKm       float64             `json:"distance_km"`
	MaxLoad          int                 `json:"max_load"`
	DrivingTimeMin   float64             `json:"driving_time_min"`
	HandoverTimeMin  float64             `json:"handover_time_min"`
	PickupTimeMin    float64             `json:"pickup_time_min"`
	DutyCompletedMin float64             `json:"duty_completed_min"`
}

// PlanResponse is the solve output stored as task output and returned by the
// status endpoint. OptimizedStatus false means no feasible assignment was
// found; every other field is then absent.
type PlanResponse struct {
	OptimizedStatus bool `json:"optimized_status"`

	Routes []TripResponse `json:"routes,omitempty"`

	OptimizedDistanceKm  float64 `json:"optimized_distance_km,omitempty"`
	OptimizedDurationMin float64 `json:"optimized_duration_min,omitempty"`
	InitialDistanceKm    float64 `json:"initial_distance_km,omitempty"`
	InitialDurationMin   float64 `json:"initial_duration_min,omitempty"`
	SavedDistanceKm      float64 `json:"saved_distance_km,omitempty"`
	SavedDurationMin     float64 `json:"saved_duration_min,omitempty"`

	VehiclesUsed   int      `json:"vehicles_used,omitempty"`
	DroppedOrders  []string `json:"dropped_orders,omitempty"`
	ExcludedOrders []string `json:"excluded_orders,omitempty"`

	AllPossibleOrderings string `json:"all_possible_orderings,omitempty"`
	TriedOrderings       int    `json:"tried_orderings,omitempty"`
}

// FromPlan converts a decoded plan, attaching the orders excluded before the
// solve ran.
func FromPlan(p *domain.Plan, excluded []string) PlanResponse {
	out := PlanResponse{
		OptimizedStatus:      true,
		Routes:               make([]TripResponse, 0, len(p.Trips)),
		OptimizedDistanceKm:  p.OptimizedKm,
		OptimizedDurationMin: p.OptimizedMin,
		InitialDistanceKm:    p.InitialKm,
		InitialDurationMin:   p.InitialMin,
		SavedDistanceKm:      p.SavedKm,
		SavedDurationMin:     p.SavedMin,
		VehiclesUsed:         p.VehiclesUsed,
		DroppedOrders:        p.DroppedOrders,
		ExcludedOrders:       excluded,
		AllPossibleOrderings: p.PossibleOrderings,
		TriedOrderings:       p.TriedOrderings,
	}
	for _, t := range p.Trips {
		trip := TripResponse{
			Route:            make([]OperationResponse, 0, len(t.Operations)),
			DistanceKm:       t.DistanceKm,
			MaxLoad:          t.MaxLoad,
			DrivingTimeMin:   t.DrivingMin,
			HandoverTimeMin:  t.HandoverMin,
			PickupTimeMin:    t.PickupMin,
			DutyCompletedMin: t.DutyCompletedMin,
		}
		for _, op := range t.Operations {
			trip.Route = append(trip.Route, OperationResponse{
				OrderID:          op.OrderID,
				Operation:        string(op.Operation),
				EstimatedTimeMin: op.EstimatedTimeMin,
			})
		}
		out.Routes = append(out.Routes, trip)
	}
	return out
}

// Infeasible is the terminal output for a solve that found no assignment.
func Infeasible(excluded []string) PlanResponse {
	return PlanResponse{OptimizedStatus: false, ExcludedOrders: excluded}
}
