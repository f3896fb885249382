// Package audit captures the append-only trail of scan attempts and
// shipment actions. Rejected attempts are recorded alongside accepted ones
// so operators can review who tried to move what, and when.
package audit

import (
	"time"

	"github.com/google/uuid"

	"cargotrace/pkg/domain"
)

// Actions recorded in the trail.
const (
	ActionScanAccepted     = "scan_accepted"
	ActionScanRejected     = "scan_rejected"
	ActionShipmentCreated  = "shipment_created"
	ActionShipmentLocked   = "shipment_locked"
	ActionShipmentAssigned = "shipment_assigned"
	ActionShipmentAdvanced = "shipment_advanced"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID           uuid.UUID
	Timestamp    time.Time
	Actor        domain.ActorID
	Role         domain.Role
	Action       string
	ShipmentHash domain.ShipmentHash
	ContainerID  domain.ContainerID
	// Reason holds the rejection code for scan_rejected events.
	Reason string
	// Concern carries the free-text annotation attached to a scan, if any.
	Concern string
}
