// Package shipment owns the shipment/container aggregate: models, stores,
// and the service for supplier and admin operations (create, lock, assign,
// explicit status advance). Scan-driven container transitions live in
// internal/scan but persist through this package's Store.
package shipment

import (
	"time"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
)

// Container is the unit of physical goods tracked by its own QR-encoded
// identifier. Containers are created with their shipment, mutated only
// through scan verdicts, and never deleted; DELIVERED is terminal.
type Container struct {
	ContainerID     domain.ContainerID
	ShipmentHash    domain.ShipmentHash
	ContainerNumber int
	Quantity        int
	Status          lifecycle.ContainerStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Assignment binds a stage to the actor authorized to advance containers at
// that stage.
type Assignment struct {
	Actor      domain.ActorID
	AssignedAt time.Time
}

// Document is an externally uploaded supporting document reference.
type Document struct {
	Name       string
	URI        string
	UploadedAt time.Time
}

// Shipment is a batch of containers moving together through the supply
// chain. Status is a projection of the aggregate container state plus the
// lock flag; it is never set directly from a scan submission.
type Shipment struct {
	ShipmentHash         domain.ShipmentHash
	BatchID              string
	Supplier             domain.ActorID
	NumberOfContainers   int
	TotalQuantity        int
	QuantityPerContainer int
	Status               lifecycle.ShipmentStatus

	// IsLocked is set once the shipment is anchored to the ledger; TxHash
	// is the anchor transaction. Scanning is only meaningful once locked.
	IsLocked bool
	TxHash   string

	AssignedTransporter *Assignment
	AssignedWarehouse   *Assignment
	AssignedRetailer    *Assignment

	SupportingDocuments []Document

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignmentFor returns the assignment slot for a stage role, or nil for
// roles without a stage.
func (s *Shipment) AssignmentFor(role domain.Role) *Assignment {
	switch role {
	case domain.RoleTransporter:
		return s.AssignedTransporter
	case domain.RoleWarehouse:
		return s.AssignedWarehouse
	case domain.RoleRetailer:
		return s.AssignedRetailer
	}
	return nil
}

// setAssignment replaces the assignment slot for a stage role. Callers must
// have validated the role already.
func (s *Shipment) setAssignment(role domain.Role, a Assignment) {
	switch role {
	case domain.RoleTransporter:
		s.AssignedTransporter = &a
	case domain.RoleWarehouse:
		s.AssignedWarehouse = &a
	case domain.RoleRetailer:
		s.AssignedRetailer = &a
	}
}
