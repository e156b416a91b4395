package domain

// OrderType distinguishes orders that collect goods from a customer
// (pickup) from orders that bring goods to a customer (delivery).
type OrderType string

const (
	OrderPickup   OrderType = "pickup"
	OrderDelivery OrderType = "delivery"
)

// Window is a time interval. The unit depends on context: request-level
// windows are minutes of the day, windows on a RoutingProblem have already
// been converted to distance-equivalent kilometers.
type Window struct {
	Start float64
	End   float64
}

// Inverted reports whether the window closes before it opens.
func (w Window) Inverted() bool { return w.Start > w.End }

// Order is a single transport request between two locations.
// Source and Destination are "lat,long" strings, the same content-addressed
// form the distance provider is keyed by.
type Order struct {
	ID          string
	Source      string
	Destination string
	Quantity    int
	Type        OrderType

	// Window is the customer-facing delivery (or collection) window in
	// minutes of the day; nil when the variant does not use time windows.
	Window *Window

	// HandoverMin is the dwell time spent with the customer, in minutes.
	HandoverMin float64

	// Storage is an optional storage-class requirement ("" means none).
	// Resolved once at build time; there is no runtime fallback.
	Storage string
}

// CustomerLocation returns the location where the customer-facing
// operation happens: the source for pickups, the destination for deliveries.
func (o Order) CustomerLocation() string {
	if o.Type == OrderPickup {
		return o.Source
	}
	return o.Destination
}
