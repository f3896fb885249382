package lifecycle

// DeriveShipmentStatus projects the shipment-level status from its
// containers' statuses and the lock flag. Pure aggregation:
//
//   - every container DELIVERED (and at least one container) -> delivered
//   - any AT_WAREHOUSE with no earlier-stage container       -> at_warehouse
//   - any IN_TRANSIT                                          -> in_transit
//   - otherwise created or ready_for_dispatch, by lock flag
//
// A shipment is delivered iff all of its containers are DELIVERED.
func DeriveShipmentStatus(statuses []ContainerStatus, locked bool) ShipmentStatus {
	var created, inTransit, atWarehouse, delivered int
	for _, s := range statuses {
		switch s {
		case ContainerCreated:
			created++
		case ContainerInTransit:
			inTransit++
		case ContainerAtWarehouse:
			atWarehouse++
		case ContainerDelivered:
			delivered++
		}
	}

	total := len(statuses)
	if total > 0 && delivered == total {
		return ShipmentDelivered
	}
	if atWarehouse > 0 && created == 0 && inTransit == 0 {
		return ShipmentAtWarehouse
	}
	if inTransit > 0 {
		return ShipmentInTransit
	}
	if locked {
		return ShipmentReadyForDispatch
	}
	return ShipmentCreated
}

// CountAtOrPast returns how many statuses are at or beyond the given stage.
// This is the stage-relative "scanned" count: a warehouse actor's scanned
// means rank >= AT_WAREHOUSE while a retailer's means == DELIVERED.
func CountAtOrPast(statuses []ContainerStatus, stage ContainerStatus) int {
	threshold := Rank(stage)
	n := 0
	for _, s := range statuses {
		if Rank(s) >= threshold {
			n++
		}
	}
	return n
}
