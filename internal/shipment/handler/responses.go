package handler

import (
	"time"

	"cargotrace/internal/lifecycle"
	"cargotrace/internal/shipment"
	"cargotrace/pkg/domain"
)

type containerResponse struct {
	ContainerID     string `json:"container_id"`
	ContainerNumber int    `json:"container_number"`
	Quantity        int    `json:"quantity"`
	Status          string `json:"status"`
	StatusLabel     string `json:"status_label"`
}

type assignmentResponse struct {
	ActorID    string    `json:"actor_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

type documentResponse struct {
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type shipmentResponse struct {
	ShipmentHash         string              `json:"shipment_hash"`
	BatchID              string              `json:"batch_id"`
	SupplierID           string              `json:"supplier_id"`
	NumberOfContainers   int                 `json:"number_of_containers"`
	TotalQuantity        int                 `json:"total_quantity"`
	QuantityPerContainer int                 `json:"quantity_per_container"`
	Status               string              `json:"status"`
	StatusLabel          string              `json:"status_label"`
	IsLocked             bool                `json:"is_locked"`
	TxHash               string              `json:"tx_hash,omitempty"`
	AssignedTransporter  *assignmentResponse `json:"assigned_transporter,omitempty"`
	AssignedWarehouse    *assignmentResponse `json:"assigned_warehouse,omitempty"`
	AssignedRetailer     *assignmentResponse `json:"assigned_retailer,omitempty"`
	SupportingDocuments  []documentResponse  `json:"supporting_documents,omitempty"`
	Containers           []containerResponse `json:"containers,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// audienceFor maps the caller's role onto a label vocabulary. Suppliers and
// transporters see the admin (canonical) labels.
func audienceFor(role domain.Role) lifecycle.Audience {
	switch role {
	case domain.RoleWarehouse:
		return lifecycle.AudienceWarehouse
	case domain.RoleRetailer:
		return lifecycle.AudienceRetailer
	}
	return lifecycle.AudienceAdmin
}

func toShipmentResponse(sh *shipment.Shipment, containers []shipment.Container, audience lifecycle.Audience) shipmentResponse {
	resp := shipmentResponse{
		ShipmentHash:         sh.ShipmentHash.String(),
		BatchID:              sh.BatchID,
		SupplierID:           sh.Supplier.String(),
		NumberOfContainers:   sh.NumberOfContainers,
		TotalQuantity:        sh.TotalQuantity,
		QuantityPerContainer: sh.QuantityPerContainer,
		Status:               string(sh.Status),
		StatusLabel:          lifecycle.ShipmentLabel(audience, sh.Status),
		IsLocked:             sh.IsLocked,
		TxHash:               sh.TxHash,
		CreatedAt:            sh.CreatedAt,
		UpdatedAt:            sh.UpdatedAt,
	}
	resp.AssignedTransporter = toAssignmentResponse(sh.AssignedTransporter)
	resp.AssignedWarehouse = toAssignmentResponse(sh.AssignedWarehouse)
	resp.AssignedRetailer = toAssignmentResponse(sh.AssignedRetailer)
	for _, doc := range sh.SupportingDocuments {
		resp.SupportingDocuments = append(resp.SupportingDocuments, documentResponse{
			Name:       doc.Name,
			URI:        doc.URI,
			UploadedAt: doc.UploadedAt,
		})
	}
	for _, c := range containers {
		resp.Containers = append(resp.Containers, toContainerResponse(c, audience))
	}
	return resp
}

func toContainerResponse(c shipment.Container, audience lifecycle.Audience) containerResponse {
	return containerResponse{
		ContainerID:     c.ContainerID.String(),
		ContainerNumber: c.ContainerNumber,
		Quantity:        c.Quantity,
		Status:          string(c.Status),
		StatusLabel:     lifecycle.ContainerLabel(audience, c.Status),
	}
}

func toAssignmentResponse(a *shipment.Assignment) *assignmentResponse {
	if a == nil {
		return nil
	}
	return &assignmentResponse{ActorID: a.Actor.String(), AssignedAt: a.AssignedAt}
}
