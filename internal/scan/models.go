package scan

import (
	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
)

// VerifyRequest is one scan attempt as submitted for verification.
type VerifyRequest struct {
	ContainerID domain.ContainerID
	Actor       domain.ActorID
	Role        domain.Role
	// Concern is an optional free-text annotation. It never alters the
	// transition outcome; it travels with the audit event.
	Concern string
}

// ContainerResult reports the container-level outcome of an accepted scan.
type ContainerResult struct {
	ContainerID    domain.ContainerID
	PreviousStatus lifecycle.ContainerStatus
	CurrentStatus  lifecycle.ContainerStatus
}

// ShipmentResult reports the shipment-level aggregation after an accepted
// scan. Counts are stage-relative to the scanning role.
type ShipmentResult struct {
	ShipmentHash       domain.ShipmentHash
	PreviousStatus     lifecycle.ShipmentStatus
	CurrentStatus      lifecycle.ShipmentStatus
	StatusChanged      bool
	AllComplete        bool
	ScannedCount       int
	PendingCount       int
	NumberOfContainers int
}

// Verdict is the verification outcome. Rejections are verdicts, not errors:
// only infrastructure failures surface as Go errors from Verify.
type Verdict struct {
	Accepted bool
	// Reason and Message are set on rejection only.
	Reason  lifecycle.RejectionReason
	Message string

	Container *ContainerResult
	Shipment  *ShipmentResult
	Concern   string
}

// rejected builds a rejection verdict with the canonical message.
func rejected(reason lifecycle.RejectionReason) *Verdict {
	return &Verdict{Accepted: false, Reason: reason, Message: reason.Message()}
}
