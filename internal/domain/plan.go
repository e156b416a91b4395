package domain

// OperationRecord is one stop-level action in a decoded plan.
type OperationRecord struct {
	OrderID   string
	Operation NodeRole

	// EstimatedTimeMin is the cumulative time (including waiting and dwell)
	// at which the operation completes, in minutes from route start.
	EstimatedTimeMin float64
}

// VehicleTrip is the decoded route of a single vehicle.
type VehicleTrip struct {
	Operations []OperationRecord

	// DistanceKm is pure travel distance with every injected dwell removed.
	DistanceKm float64

	// MaxLoad is the peak of the running signed-demand sum along the route.
	MaxLoad int

	// Time split of the driver's work, in minutes.
	DrivingMin  float64
	HandoverMin float64
	PickupMin   float64

	// DutyCompletedMin is the cumulative dimension value at route end,
	// converted to minutes (when the trip finishes, counting waiting).
	DutyCompletedMin float64
}

// Plan is the final decoded output of a solve invocation.
type Plan struct {
	Trips []VehicleTrip

	OptimizedKm  float64
	OptimizedMin float64

	// Initial* describe the naive sequential baseline: visiting the
	// customer-facing stop of every order in input order from the depot.
	// Purely a comparison figure; it never influences the solver.
	InitialKm  float64
	InitialMin float64

	SavedKm  float64
	SavedMin float64

	// DroppedOrders lists ids the solver chose not to serve (disjunctions).
	DroppedOrders []string

	VehiclesUsed int

	// Search-space factoids surfaced to callers: how many stop orderings
	// exist for this many orders, and how many the search realistically
	// covered. Informational only.
	PossibleOrderings string
	TriedOrderings    int
}
