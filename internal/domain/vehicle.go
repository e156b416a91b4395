package domain

// Vehicle describes one vehicle/driver available for dispatch.
type Vehicle struct {
	// Capacity is the nominal load capacity in order-quantity units.
	Capacity int

	// Utilization is the fraction of Capacity that may actually be used
	// (0 < Utilization <= 1). Zero means "use the full capacity".
	Utilization float64

	// Duty is the driver's working window in minutes of the day; nil when
	// the variant does not constrain duty time per driver.
	Duty *Window

	// Storage lists the storage classes this vehicle supports.
	// Empty means the vehicle accepts any order.
	Storage []string
}

// EffectiveCapacity applies the utilization fraction to the nominal capacity.
func (v Vehicle) EffectiveCapacity() int {
	if v.Utilization <= 0 || v.Utilization >= 1 {
		return v.Capacity
	}
	return int(float64(v.Capacity) * v.Utilization)
}

// Supports reports whether the vehicle can carry the given storage class.
func (v Vehicle) Supports(class string) bool {
	for _, s := range v.Storage {
		if s == class {
			return true
		}
	}
	return false
}
