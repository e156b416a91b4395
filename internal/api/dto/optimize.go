package dto

import (
	"fmt"

	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/services"
)

// Envelope is the uniform response wrapper of every endpoint.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type WindowDTO struct {
	StartMin float64 `json:"start_min"`
	EndMin   float64 `json:"end_min"`
}

type OrderDTO struct {
	OrderID         string     `json:"order_id"`
	Source          string     `json:"source"`
	Destination     string     `json:"destination"`
	Quantity        int        `json:"quantity"`
	OrderType       string     `json:"order_type,omitempty"` // "pickup" or "delivery"
	TimeWindow      *WindowDTO `json:"time_window,omitempty"`
	HandoverTimeMin float64    `json:"handover_time_min,omitempty"`
	Storage         string     `json:"storage,omitempty"`
}

type VehicleDTO struct {
	Capacity    int        `json:"capacity"`
	Utilization float64    `json:"utilization,omitempty"`
	DutyWindow  *WindowDTO `json:"duty_window,omitempty"`
	Storage     []string   `json:"storage,omitempty"`
}

type SingleTripRequestDTO struct {
	Warehouse       string     `json:"warehouse_location"`
	Orders          []OrderDTO `json:"orders"`
	Vehicle         VehicleDTO `json:"vehicle"`
	DutyHours       float64    `json:"duty_hours,omitempty"`
	HandoverTimeMin float64    `json:"handover_time_min,omitempty"`
	AvgSpeedKmh     float64    `json:"avg_speed_kmh,omitempty"`
	TimeLimitSec    int        `json:"time_limit_sec,omitempty"`
}

type MultiTripRequestDTO struct {
	Warehouse       string       `json:"warehouse_location"`
	Orders          []OrderDTO   `json:"orders"`
	Vehicles        []VehicleDTO `json:"vehicles"`
	DutyHours       float64      `json:"duty_hours,omitempty"`
	HandoverTimeMin float64      `json:"handover_time_min,omitempty"`
	AvgSpeedKmh     float64      `json:"avg_speed_kmh,omitempty"`
	TimeLimitSec    int          `json:"time_limit_sec,omitempty"`
}

type TimeWindowRequestDTO struct {
	Warehouse             string       `json:"warehouse_location"`
	Orders                []OrderDTO   `json:"orders"`
	Vehicles              []VehicleDTO `json:"vehicles"`
	PickupTimeMin         float64      `json:"pickup_time_min,omitempty"`
	WarehousePickupWindow *WindowDTO   `json:"warehouse_pickup_window,omitempty"`
	WarehouseDropWindow   *WindowDTO   `json:"warehouse_drop_window,omitempty"`
	AvgSpeedKmh           float64      `json:"avg_speed_kmh,omitempty"`
	OneWay                bool         `json:"one_way,omitempty"`
	RepeatHandover        bool         `json:"repeat_handover,omitempty"`
	TimeLimitSec          int          `json:"time_limit_sec,omitempty"`
}

func (w *WindowDTO) toDomain() *domain.Window {
	if w == nil {
		return nil
	}
	return &domain.Window{Start: w.StartMin, End: w.EndMin}
}

func (o OrderDTO) toDomain() domain.Order {
	orderType := domain.OrderDelivery
	if o.OrderType == string(domain.OrderPickup) {
		orderType = domain.OrderPickup
	}
	return domain.Order{
		ID:          o.OrderID,
		Source:      o.Source,
		Destination: o.Destination,
		Quantity:    o.Quantity,
		Type:        orderType,
		Window:      o.TimeWindow.toDomain(),
		HandoverMin: o.HandoverTimeMin,
		Storage:     o.Storage,
	}
}

func (v VehicleDTO) toDomain() domain.Vehicle {
	return domain.Vehicle{
		Capacity:    v.Capacity,
		Utilization: v.Utilization,
		Duty:        v.DutyWindow.toDomain(),
		Storage:     v.Storage,
	}
}

// validateOrders rejects malformed orders and splits off the ones without a
// resolvable address. Orders at unknown addresses are excluded rather than
// failing the whole request.
func validateOrders(in []OrderDTO, requireWindows bool) ([]domain.Order, []string, error) {
	if len(in) == 0 {
		return nil, nil, &domain.ValidationError{Msg: "orders must not be empty"}
	}

	kept := make([]domain.Order, 0, len(in))
	excluded := make([]string, 0)
	for i, o := range in {
		if o.OrderID == "" {
			return nil, nil, &domain.ValidationError{Msg: fmt.Sprintf("order at index %d has no order_id", i)}
		}
		if o.Quantity <= 0 {
			return nil, nil, &domain.ValidationError{Msg: fmt.Sprintf("order %s: quantity must be positive", o.OrderID)}
		}
		if o.OrderType != "" && o.OrderType != string(domain.OrderPickup) && o.OrderType != string(domain.OrderDelivery) {
			return nil, nil, &domain.ValidationError{Msg: fmt.Sprintf("order %s: unknown order_type %q", o.OrderID, o.OrderType)}
		}
		if o.TimeWindow != nil && o.TimeWindow.StartMin > o.TimeWindow.EndMin {
			return nil, nil, &domain.ValidationError{Msg: fmt.Sprintf("order %s: time window start exceeds end", o.OrderID)}
		}
		if requireWindows && o.TimeWindow == nil {
			return nil, nil, &domain.ValidationError{Msg: fmt.Sprintf("order %s: time_window is required", o.OrderID)}
		}
		if !domain.Locatable(o.Source) || !domain.Locatable(o.Destination) {
			excluded = append(excluded, o.OrderID)
			continue
		}
		kept = append(kept, o.toDomain())
	}

	if len(kept) == 0 {
		return nil, nil, &domain.ValidationError{Msg: "no order has a resolvable address"}
	}
	return kept, excluded, nil
}

func validateVehicles(in []VehicleDTO) ([]domain.Vehicle, error) {
	if len(in) == 0 {
		return nil, &domain.ValidationError{Msg: "vehicles must not be empty"}
	}
	out := make([]domain.Vehicle, 0, len(in))
	for i, v := range in {
		if v.Capacity <= 0 {
			return nil, &domain.ValidationError{Msg: fmt.Sprintf("vehicle %d: capacity must be positive", i)}
		}
		if v.DutyWindow != nil && v.DutyWindow.StartMin > v.DutyWindow.EndMin {
			return nil, &domain.ValidationError{Msg: fmt.Sprintf("vehicle %d: duty window start exceeds end", i)}
		}
		out = append(out, v.toDomain())
	}
	return out, nil
}

// ToSingleTrip validates the payload and produces the service request plus
// the excluded order ids.
func (r SingleTripRequestDTO) ToSingleTrip() (services.SingleTripRequest, []string, error) {
	if !domain.Locatable(r.Warehouse) {
		return services.SingleTripRequest{}, nil, &domain.ValidationError{Msg: "warehouse_location is not resolvable"}
	}
	orders, excluded, err := validateOrders(r.Orders, false)
	if err != nil {
		return services.SingleTripRequest{}, nil, err
	}
	if r.Vehicle.Capacity <= 0 {
		return services.SingleTripRequest{}, nil, &domain.ValidationError{Msg: "vehicle capacity must be positive"}
	}
	return services.SingleTripRequest{
		Depot:         r.Warehouse,
		Orders:        orders,
		Vehicle:       r.Vehicle.toDomain(),
		DutyHours:     r.DutyHours,
		HandoverMin:   r.HandoverTimeMin,
		AvgSpeedKmh:   r.AvgSpeedKmh,
		TimeBudgetSec: r.TimeLimitSec,
	}, excluded, nil
}

func (r MultiTripRequestDTO) ToMultiTrip() (services.MultiTripRequest, []string, error) {
	if !domain.Locatable(r.Warehouse) {
		return services.MultiTripRequest{}, nil, &domain.ValidationError{Msg: "warehouse_location is not resolvable"}
	}
	orders, excluded, err := validateOrders(r.Orders, false)
	if err != nil {
		return services.MultiTripRequest{}, nil, err
	}
	vehicles, err := validateVehicles(r.Vehicles)
	if err != nil {
		return services.MultiTripRequest{}, nil, err
	}
	return services.MultiTripRequest{
		Depot:         r.Warehouse,
		Orders:        orders,
		Vehicles:      vehicles,
		DutyHours:     r.DutyHours,
		HandoverMin:   r.HandoverTimeMin,
		AvgSpeedKmh:   r.AvgSpeedKmh,
		TimeBudgetSec: r.TimeLimitSec,
	}, excluded, nil
}

func (r TimeWindowRequestDTO) ToTimeWindow() (services.TimeWindowRequest, []string, error) {
	if !domain.Locatable(r.Warehouse) {
		return services.TimeWindowRequest{}, nil, &domain.ValidationError{Msg: "warehouse_location is not resolvable"}
	}
	orders, excluded, err := validateOrders(r.Orders, true)
	if err != nil {
		return services.TimeWindowRequest{}, nil, err
	}
	vehicles, err := validateVehicles(r.Vehicles)
	if err != nil {
		return services.TimeWindowRequest{}, nil, err
	}
	if r.WarehousePickupWindow != nil && r.WarehousePickupWindow.StartMin > r.WarehousePickupWindow.EndMin {
		return services.TimeWindowRequest{}, nil, &domain.ValidationError{Msg: "warehouse_pickup_window start exceeds end"}
	}
	if r.WarehouseDropWindow != nil && r.WarehouseDropWindow.StartMin > r.WarehouseDropWindow.EndMin {
		return services.TimeWindowRequest{}, nil, &domain.ValidationError{Msg: "warehouse_drop_window start exceeds end"}
	}
	return services.TimeWindowRequest{
		Depot:                 r.Warehouse,
		Orders:                orders,
		Vehicles:              vehicles,
		PickupDwellMin:        r.PickupTimeMin,
		WarehousePickupWindow: r.WarehousePickupWindow.toDomain(),
		WarehouseDropWindow:   r.WarehouseDropWindow.toDomain(),
		AvgSpeedKmh:           r.AvgSpeedKmh,
		OneWay:                r.OneWay,
		RepeatHandover:        r.RepeatHandover,
		TimeBudgetSec:         r.TimeLimitSec,
	}, excluded, nil
}
