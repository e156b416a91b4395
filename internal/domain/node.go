package domain

// NodeRole identifies what happens at a routing-graph node.
type NodeRole string

const (
	RoleWarehouse NodeRole = "warehouse"
	RolePickup    NodeRole = "pickup"
	RoleDelivery  NodeRole = "deliver"
)

// Node is one vertex of the doubled routing graph. Node 0 is always the
// warehouse; order k (1-indexed) owns nodes 2k-1 (pickup side, +quantity)
// and 2k (delivery side, -quantity), so the role of any non-depot node is
// derivable from its index parity.
type Node struct {
	Index    int
	Role     NodeRole
	Location string

	// Demand is the signed load change on arrival: +quantity at the pickup
	// node, -quantity at the delivery node, 0 at the warehouse.
	Demand int

	// Window is the arrival window in distance-equivalent kilometers.
	// Meaningful only when the problem was built with time windows.
	Window Window

	// Extra is the dwell cost injected on arrival at this node, already
	// converted to kilometers (handover on the customer side, pickup dwell
	// on the warehouse side).
	Extra float64
}

// RoleOf maps a node index to its role by parity.
func RoleOf(index int) NodeRole {
	switch {
	case index == 0:
		return RoleWarehouse
	case index%2 == 1:
		return RolePickup
	default:
		return RoleDelivery
	}
}

// OrderIndex returns the 0-based order index owning a non-depot node.
func OrderIndex(node int) int { return (node + 1) / 2 - 1 }
