package shipment

import (
	"context"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
)

// Store persists shipments and their containers. Implementations return
// sentinel errors (pkg/platform/sentinel) for infrastructure facts; services
// translate them into coded domain errors.
type Store interface {
	// CreateShipment persists a shipment with its containers atomically.
	// Returns sentinel.ErrAlreadyUsed if the hash is taken.
	CreateShipment(ctx context.Context, s *Shipment, containers []Container) error

	FindShipment(ctx context.Context, hash domain.ShipmentHash) (*Shipment, error)

	// FindContainer resolves a container by its QR identifier.
	FindContainer(ctx context.Context, id domain.ContainerID) (*Container, error)

	// ListContainers returns a shipment's containers ordered by container
	// number.
	ListContainers(ctx context.Context, hash domain.ShipmentHash) ([]Container, error)

	// AdvanceContainer moves a container from exactly `from` to `to`.
	// Compare-and-set: returns sentinel.ErrConflict when the container is
	// no longer at `from`, so racing identical scans surface as losses
	// rather than double advances.
	AdvanceContainer(ctx context.Context, id domain.ContainerID, from, to lifecycle.ContainerStatus) error

	// SetShipmentStatus stores a freshly derived projection.
	SetShipmentStatus(ctx context.Context, hash domain.ShipmentHash, status lifecycle.ShipmentStatus) error

	// LockShipment anchors the shipment. Returns sentinel.ErrInvalidState
	// if it is already locked.
	LockShipment(ctx context.Context, hash domain.ShipmentHash, txHash string) error

	// Assign records the actor authorized for a stage role.
	Assign(ctx context.Context, hash domain.ShipmentHash, role domain.Role, a Assignment) error

	// AddDocument appends a supporting document reference.
	AddDocument(ctx context.Context, hash domain.ShipmentHash, doc Document) error

	// ListAssigned returns shipments where the actor holds the given stage
	// assignment, newest first.
	ListAssigned(ctx context.Context, actor domain.ActorID, role domain.Role) ([]Shipment, error)
}
