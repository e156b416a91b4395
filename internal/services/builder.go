package services

import (
	"context"
	"fmt"

	"vrp-dispatch-service/internal/domain"
	"vrp-dispatch-service/internal/platform/obs"
	"vrp-dispatch-service/internal/ports"
)

// BuildOptions are the knobs shared by all orchestrator variants.
type BuildOptions struct {
	// AvgSpeedKmh is the conversion factor between minutes and kilometers:
	// dist = minutes/60 * AvgSpeedKmh. Defaults to 50.
	AvgSpeedKmh float64

	// PickupDwellMin is the uniform warehouse-side dwell per order in
	// minutes (loading at pickup, unloading at drop).
	PickupDwellMin float64

	// Warehouse windows, minutes of the day. Applied to the warehouse-side
	// node of each order when time windows are enabled; nil means all day.
	WarehousePickupWindow *domain.Window
	WarehouseDropWindow   *domain.Window

	UseTimeWindows bool
	RoundTrip      bool
	RepeatHandover bool
}

// BuildInput is the full problem description handed to the builder.
type BuildInput struct {
	Depot    string
	Orders   []domain.Order
	Vehicles []domain.Vehicle
	Options  BuildOptions
}

// BuildProblem converts raw orders and vehicles into a solver-ready
// RoutingProblem: doubled nodes with signed demands, the full augmented
// distance matrix, windows converted to distance-equivalent units, storage
// restrictions resolved to explicit vehicle sets, and the per-instance
// disjunction penalty.
//
// The matrix provider is queried exactly once, over the deduplicated
// location list; a provider failure fails the whole build.
func BuildProblem(ctx context.Context, in BuildInput, provider ports.MatrixProvider) (_ *domain.RoutingProblem, err error) {
	defer obs.Time(ctx, "services.BuildProblem")(&err)

	if len(in.Orders) == 0 {
		return nil, &domain.BuildError{Msg: "order list is empty"}
	}
	if len(in.Vehicles) == 0 {
		return nil, &domain.BuildError{Msg: "vehicle list is empty"}
	}
	if !domain.Locatable(in.Depot) {
		return nil, &domain.BuildError{Msg: fmt.Sprintf("depot location %q is not locatable", in.Depot)}
	}

	opts := in.Options
	if opts.AvgSpeedKmh <= 0 {
		opts.AvgSpeedKmh = 50
	}

	// Upstream validation already rejects these; re-assert before the solver
	// ever sees the problem.
	for _, o := range in.Orders {
		if !domain.Locatable(o.Source) || !domain.Locatable(o.Destination) {
			return nil, &domain.BuildError{Msg: fmt.Sprintf("order %s references an unlocatable location", o.ID)}
		}
		if o.Window != nil && o.Window.Inverted() {
			return nil, &domain.BuildError{Msg: fmt.Sprintf("order %s time window is inverted", o.ID)}
		}
	}
	for i, v := range in.Vehicles {
		if v.Duty != nil && v.Duty.Inverted() {
			return nil, &domain.BuildError{Msg: fmt.Sprintf("vehicle %d duty window is inverted", i)}
		}
	}

	toDist := func(minutes float64) float64 { return minutes / 60 * opts.AvgSpeedKmh }
	toDistWindow := func(w domain.Window) domain.Window {
		return domain.Window{Start: toDist(w.Start), End: toDist(w.End)}
	}

	allDay := domain.Window{Start: 0, End: 24 * 60}
	warehousePickup := allDay
	if opts.WarehousePickupWindow != nil {
		warehousePickup = *opts.WarehousePickupWindow
	}
	warehouseDrop := allDay
	if opts.WarehouseDropWindow != nil {
		warehouseDrop = *opts.WarehouseDropWindow
	}

	locations := make([]string, 0, 1+2*len(in.Orders))
	locations = append(locations, in.Depot)
	for _, o := range in.Orders {
		locations = append(locations, o.Source, o.Destination)
	}

	matrix, err := expandMatrix(ctx, provider, locations)
	if err != nil {
		return nil, &domain.ProviderError{Err: err}
	}

	// When routes need not return to base, the arc back to the depot is free.
	if !opts.RoundTrip {
		for i := range matrix {
			matrix[i][0] = 0
		}
	}

	pickupDwell := toDist(opts.PickupDwellMin)

	nodes := make([]domain.Node, 0, 1+2*len(in.Orders))
	nodes = append(nodes, domain.Node{
		Index:    0,
		Role:     domain.RoleWarehouse,
		Location: in.Depot,
		Window:   toDistWindow(allDay),
	})

	pairs := make([][2]int, 0, len(in.Orders))
	for k, o := range in.Orders {
		pickupIdx := 2*k + 1
		deliveryIdx := 2*k + 2

		pickup := domain.Node{
			Index:    pickupIdx,
			Role:     domain.RolePickup,
			Location: o.Source,
			Demand:   o.Quantity,
		}
		delivery := domain.Node{
			Index:    deliveryIdx,
			Role:     domain.RoleDelivery,
			Location: o.Destination,
			Demand:   -o.Quantity,
		}

		// The customer-facing side carries the handover dwell and the order
		// window; the warehouse side carries the pickup dwell and the
		// matching warehouse window.
		orderWindow := allDay
		if o.Window != nil {
			orderWindow = *o.Window
		}
		switch o.Type {
		case domain.OrderPickup:
			pickup.Extra = toDist(o.HandoverMin)
			pickup.Window = toDistWindow(orderWindow)
			delivery.Extra = pickupDwell
			delivery.Window = toDistWindow(warehouseDrop)
		default:
			pickup.Extra = pickupDwell
			pickup.Window = toDistWindow(warehousePickup)
			delivery.Extra = toDist(o.HandoverMin)
			delivery.Window = toDistWindow(orderWindow)
		}

		nodes = append(nodes, pickup, delivery)
		pairs = append(pairs, [2]int{pickupIdx, deliveryIdx})
	}

	if len(matrix) != len(nodes) {
		return nil, &domain.BuildError{Msg: fmt.Sprintf(
			"matrix dimension %d does not match node count %d", len(matrix), len(nodes))}
	}

	capacities := make([]int, len(in.Vehicles))
	for i, v := range in.Vehicles {
		capacities[i] = v.EffectiveCapacity()
	}

	var duties []domain.Window
	if opts.UseTimeWindows {
		duties = make([]domain.Window, len(in.Vehicles))
		for i, v := range in.Vehicles {
			d := allDay
			if v.Duty != nil {
				d = *v.Duty
			}
			duties[i] = toDistWindow(d)
		}
	}

	allowed := resolveStorage(in.Orders, in.Vehicles, pairs)

	p := &domain.RoutingProblem{
		Nodes:             nodes,
		Matrix:            matrix,
		Orders:            in.Orders,
		Pairs:             pairs,
		VehicleCapacities: capacities,
		DutyWindows:       duties,
		AllowedVehicles:   allowed,
		AvgSpeedKmh:       opts.AvgSpeedKmh,
		RoundTrip:         opts.RoundTrip,
		RepeatHandover:    opts.RepeatHandover,
		HasTimeWindows:    opts.UseTimeWindows,
	}
	p.Penalty = disjunctionPenalty(p, pickupDwell)

	return p, nil
}

// expandMatrix queries the provider once over the unique location list and
// expands the result back onto the (possibly repeating) input order.
func expandMatrix(ctx context.Context, provider ports.MatrixProvider, locations []string) ([][]float64, error) {
	uniq := make([]string, 0, len(locations))
	index := make(map[string]int, len(locations))
	for _, loc := range locations {
		if _, ok := index[loc]; ok {
			continue
		}
		index[loc] = len(uniq)
		uniq = append(uniq, loc)
	}

	base, err := provider.Matrix(ctx, uniq)
	if err != nil {
		return nil, err
	}
	if len(base) != len(uniq) {
		return nil, fmt.Errorf("provider returned %d rows for %d locations", len(base), len(uniq))
	}
	for i, row := range base {
		if len(row) != len(uniq) {
			return nil, fmt.Errorf("provider row %d has %d columns, want %d", i, len(row), len(uniq))
		}
	}

	full := make([][]float64, len(locations))
	for i, from := range locations {
		full[i] = make([]float64, len(locations))
		for j, to := range locations {
			full[i][j] = base[index[from]][index[to]]
		}
	}
	return full, nil
}

// resolveStorage computes the explicit per-node feasible vehicle sets.
// Restrictions apply only when an order declares a storage class and at
// least one vehicle declares supported classes; a node whose set resolves
// empty can only be absorbed by its disjunction.
func resolveStorage(orders []domain.Order, vehicles []domain.Vehicle, pairs [][2]int) map[int][]int {
	anyVehicleStorage := false
	for _, v := range vehicles {
		if len(v.Storage) > 0 {
			anyVehicleStorage = true
			break
		}
	}
	if !anyVehicleStorage {
		return nil
	}

	allowed := make(map[int][]int)
	for k, o := range orders {
		if o.Storage == "" {
			continue
		}
		feasible := make([]int, 0, len(vehicles))
		for i, v := range vehicles {
			if v.Supports(o.Storage) {
				feasible = append(feasible, i)
			}
		}
		allowed[pairs[k][0]] = feasible
		allowed[pairs[k][1]] = feasible
	}
	if len(allowed) == 0 {
		return nil
	}
	return allowed
}

// disjunctionPenalty derives the uniform drop penalty for this instance:
// strictly larger than any single achievable arc cost (max matrix edge plus
// the largest dwell addend), so the solver only ever drops a node it truly
// cannot serve.
func disjunctionPenalty(p *domain.RoutingProblem, pickupDwell float64) float64 {
	maxEdge := 0.0
	for _, row := range p.Matrix {
		for _, d := range row {
			if d > maxEdge {
				maxEdge = d
			}
		}
	}
	maxExtra := 0.0
	for _, n := range p.Nodes {
		if n.Extra > maxExtra {
			maxExtra = n.Extra
		}
	}
	return maxEdge + pickupDwell + maxExtra
}
