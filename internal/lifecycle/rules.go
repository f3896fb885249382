package lifecycle

import "cargotrace/pkg/domain"

// RejectionReason is the closed set of codes a scan submission can fail
// with. The first five are lifecycle rejections; the last three are raised
// by the scan layer but kept here so there is exactly one canonical enum.
type RejectionReason string

const (
	ReasonShipmentNotLocked RejectionReason = "SHIPMENT_NOT_LOCKED"
	ReasonWrongActorRole    RejectionReason = "WRONG_ACTOR_ROLE"
	ReasonAlreadyAtOrPast   RejectionReason = "ALREADY_AT_OR_PAST_TARGET_STATUS"
	ReasonContainerNotFound RejectionReason = "CONTAINER_NOT_FOUND"
	ReasonShipmentNotYours  RejectionReason = "SHIPMENT_NOT_ASSIGNED_TO_ACTOR"
	ReasonDuplicateScan     RejectionReason = "DUPLICATE_SCAN"
	ReasonInvalidQRFormat   RejectionReason = "INVALID_QR_FORMAT"
	ReasonNetworkError      RejectionReason = "NETWORK_ERROR"
)

// rejectionMessages is the single human-readable mapping for rejection
// codes, so call sites never hand-roll their own phrasing.
var rejectionMessages = map[RejectionReason]string{
	ReasonShipmentNotLocked: "shipment is not anchored to the ledger yet",
	ReasonWrongActorRole:    "your role cannot advance this container at its current stage",
	ReasonAlreadyAtOrPast:   "container was already scanned at this stage",
	ReasonContainerNotFound: "container is not part of any known shipment",
	ReasonShipmentNotYours:  "shipment is not assigned to you for this stage",
	ReasonDuplicateScan:     "a scan for this container was already recorded",
	ReasonInvalidQRFormat:   "the scanned code is not a valid container QR",
	ReasonNetworkError:      "could not reach the verification service",
}

// Message returns the operator-facing text for a rejection reason.
func (r RejectionReason) Message() string {
	if msg, ok := rejectionMessages[r]; ok {
		return msg
	}
	return "scan rejected"
}

// Rejection is a typed refusal of a proposed transition. It implements
// error so it can flow through ordinary error returns, but carries the
// closed-set reason for clients and audit logs.
type Rejection struct {
	Reason RejectionReason
}

func (r *Rejection) Error() string {
	return string(r.Reason) + ": " + r.Reason.Message()
}

// Reject builds a Rejection for the given reason.
func Reject(reason RejectionReason) *Rejection {
	return &Rejection{Reason: reason}
}

// CanTransition validates a proposed container transition without applying
// it. It enforces, in order:
//
//  1. the shipment must be ledger-anchored before any stage advance,
//  2. the actor role must map to a lifecycle stage at all,
//  3. the container must not already be at or past the role's target,
//  4. the role's target must be exactly the container's next status
//     (forward-only, no skipping).
//
// Assignment and existence checks (SHIPMENT_NOT_ASSIGNED_TO_ACTOR,
// CONTAINER_NOT_FOUND) are raised by callers that hold that data; the reason
// codes live here so the set stays closed.
func CanTransition(current ContainerStatus, role domain.Role, shipmentLocked bool) *Rejection {
	if !shipmentLocked {
		return Reject(ReasonShipmentNotLocked)
	}
	target, ok := TargetStatus(role)
	if !ok {
		return Reject(ReasonWrongActorRole)
	}
	if Rank(current) >= Rank(target) {
		return Reject(ReasonAlreadyAtOrPast)
	}
	next, ok := NextStatus(current)
	if !ok || next != target {
		// The container has not reached the stage this role is
		// responsible for; a retailer cannot skip a CREATED container
		// straight to DELIVERED.
		return Reject(ReasonWrongActorRole)
	}
	return nil
}
