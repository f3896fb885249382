package lifecycle

// Audience selects a presentation vocabulary. The canonical enum is the only
// thing stored or compared; labels exist purely for display, replacing the
// ad hoc casing variants that tend to accumulate at call sites.
type Audience string

const (
	AudienceAdmin     Audience = "admin"
	AudienceWarehouse Audience = "warehouse"
	AudienceRetailer  Audience = "retailer"
)

var containerLabels = map[Audience]map[ContainerStatus]string{
	AudienceAdmin: {
		ContainerCreated:     "Created",
		ContainerInTransit:   "In Transit",
		ContainerAtWarehouse: "At Warehouse",
		ContainerDelivered:   "Delivered",
	},
	AudienceWarehouse: {
		ContainerCreated:     "Awaiting Dispatch",
		ContainerInTransit:   "Inbound",
		ContainerAtWarehouse: "Received",
		ContainerDelivered:   "Shipped Out",
	},
	AudienceRetailer: {
		ContainerCreated:     "Pending",
		ContainerInTransit:   "Pending",
		ContainerAtWarehouse: "Out for Delivery",
		ContainerDelivered:   "Received",
	},
}

var shipmentLabels = map[Audience]map[ShipmentStatus]string{
	AudienceAdmin: {
		ShipmentCreated:          "Created",
		ShipmentReadyForDispatch: "Ready for Dispatch",
		ShipmentInTransit:        "In Transit",
		ShipmentAtWarehouse:      "At Warehouse",
		ShipmentDelivered:        "Delivered",
	},
	AudienceWarehouse: {
		ShipmentCreated:          "Not Dispatched",
		ShipmentReadyForDispatch: "Not Dispatched",
		ShipmentInTransit:        "Inbound",
		ShipmentAtWarehouse:      "In Warehouse",
		ShipmentDelivered:        "Completed",
	},
	AudienceRetailer: {
		ShipmentCreated:          "Pending",
		ShipmentReadyForDispatch: "Pending",
		ShipmentInTransit:        "On the Way",
		ShipmentAtWarehouse:      "Out for Delivery",
		ShipmentDelivered:        "Delivered",
	},
}

// ContainerLabel returns the display label for a container status for the
// given audience, falling back to the canonical value.
func ContainerLabel(audience Audience, s ContainerStatus) string {
	if labels, ok := containerLabels[audience]; ok {
		if label, ok := labels[s]; ok {
			return label
		}
	}
	return string(s)
}

// ShipmentLabel returns the display label for a shipment status for the
// given audience, falling back to the canonical value.
func ShipmentLabel(audience Audience, s ShipmentStatus) string {
	if labels, ok := shipmentLabels[audience]; ok {
		if label, ok := labels[s]; ok {
			return label
		}
	}
	return string(s)
}
