// Package lifecycle is the canonical definition of container and shipment
// statuses, legal transitions, and aggregation rules. It is pure: no I/O, no
// clocks, no failure modes beyond well-typed rejections.
//
// Every call site that advances a container (transporter scan, warehouse
// scan, retailer scan) must route through this package rather than
// re-implement the ordering locally.
package lifecycle

import "cargotrace/pkg/domain"

// ContainerStatus is the per-container lifecycle stage. The progression is
// strictly forward: CREATED -> IN_TRANSIT -> AT_WAREHOUSE -> DELIVERED. No
// backward transitions, no skipping.
type ContainerStatus string

const (
	ContainerCreated     ContainerStatus = "CREATED"
	ContainerInTransit   ContainerStatus = "IN_TRANSIT"
	ContainerAtWarehouse ContainerStatus = "AT_WAREHOUSE"
	ContainerDelivered   ContainerStatus = "DELIVERED"
)

// ShipmentStatus is a projection of the aggregate container state plus the
// lock flag. It is never independently settable by scan submissions.
type ShipmentStatus string

const (
	ShipmentCreated          ShipmentStatus = "created"
	ShipmentReadyForDispatch ShipmentStatus = "ready_for_dispatch"
	ShipmentInTransit        ShipmentStatus = "in_transit"
	ShipmentAtWarehouse      ShipmentStatus = "at_warehouse"
	ShipmentDelivered        ShipmentStatus = "delivered"
)

// containerOrder ranks statuses for monotonicity checks. Higher rank means
// further along the chain.
var containerOrder = map[ContainerStatus]int{
	ContainerCreated:     0,
	ContainerInTransit:   1,
	ContainerAtWarehouse: 2,
	ContainerDelivered:   3,
}

// Rank returns the position of the status in the forward progression, or -1
// for an unknown status.
func Rank(s ContainerStatus) int {
	if r, ok := containerOrder[s]; ok {
		return r
	}
	return -1
}

// IsValidContainerStatus reports whether s is one of the four canonical
// container statuses.
func IsValidContainerStatus(s ContainerStatus) bool {
	_, ok := containerOrder[s]
	return ok
}

// NextStatus returns the only legal forward status for current, or false if
// current is terminal (DELIVERED) or unknown.
func NextStatus(current ContainerStatus) (ContainerStatus, bool) {
	switch current {
	case ContainerCreated:
		return ContainerInTransit, true
	case ContainerInTransit:
		return ContainerAtWarehouse, true
	case ContainerAtWarehouse:
		return ContainerDelivered, true
	}
	return "", false
}

// TargetStatus maps a stage role onto the container status its scans apply:
// transporter -> IN_TRANSIT, warehouse -> AT_WAREHOUSE, retailer -> DELIVERED.
// Roles without a stage (supplier, admin) return false.
func TargetStatus(role domain.Role) (ContainerStatus, bool) {
	switch role {
	case domain.RoleTransporter:
		return ContainerInTransit, true
	case domain.RoleWarehouse:
		return ContainerAtWarehouse, true
	case domain.RoleRetailer:
		return ContainerDelivered, true
	}
	return "", false
}
