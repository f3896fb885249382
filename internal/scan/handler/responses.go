package handler

import "cargotrace/internal/scan"

type containerResult struct {
	ContainerID    string `json:"container_id"`
	PreviousStatus string `json:"previous_status"`
	CurrentStatus  string `json:"current_status"`
}

type shipmentResult struct {
	ShipmentHash       string `json:"shipment_hash"`
	PreviousStatus     string `json:"previous_status"`
	CurrentStatus      string `json:"current_status"`
	StatusChanged      bool   `json:"status_changed"`
	AllComplete        bool   `json:"all_complete"`
	ScannedCount       int    `json:"scanned_count"`
	PendingCount       int    `json:"pending_count"`
	NumberOfContainers int    `json:"number_of_containers"`
}

type verdictResponse struct {
	Accepted  bool             `json:"accepted"`
	Reason    string           `json:"reason,omitempty"`
	Message   string           `json:"message,omitempty"`
	Container *containerResult `json:"container,omitempty"`
	Shipment  *shipmentResult  `json:"shipment,omitempty"`
	Concern   string           `json:"concern,omitempty"`
}

func toVerdictResponse(v *scan.Verdict) verdictResponse {
	resp := verdictResponse{
		Accepted: v.Accepted,
		Reason:   string(v.Reason),
		Message:  v.Message,
		Concern:  v.Concern,
	}
	if v.Container != nil {
		resp.Container = &containerResult{
			ContainerID:    v.Container.ContainerID.String(),
			PreviousStatus: string(v.Container.PreviousStatus),
			CurrentStatus:  string(v.Container.CurrentStatus),
		}
	}
	if v.Shipment != nil {
		resp.Shipment = &shipmentResult{
			ShipmentHash:       v.Shipment.ShipmentHash.String(),
			PreviousStatus:     string(v.Shipment.PreviousStatus),
			CurrentStatus:      string(v.Shipment.CurrentStatus),
			StatusChanged:      v.Shipment.StatusChanged,
			AllComplete:        v.Shipment.AllComplete,
			ScannedCount:       v.Shipment.ScannedCount,
			PendingCount:       v.Shipment.PendingCount,
			NumberOfContainers: v.Shipment.NumberOfContainers,
		}
	}
	return resp
}
