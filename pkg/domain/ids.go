// Package domain defines the typed identifiers shared across cargotrace.
//
// IDs are distinct named types so the compiler rejects cross-type assignment
// (an ActorID can never be passed where a ShipmentHash is expected). Parsing
// happens once, at trust boundaries; everything past the handler layer works
// with already-validated values.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "cargotrace/pkg/domain-errors"
)

// ActorID identifies a registered stakeholder (supplier, transporter,
// warehouse, retailer, admin).
type ActorID uuid.UUID

// ShipmentHash is the primary identifier of a shipment. It is opaque to the
// client: either a ledger anchor hash or a human-assigned reference like
// "SHP-001".
type ShipmentHash string

// ContainerID is the opaque identifier encoded in a container's QR code.
type ContainerID string

const maxIDLength = 128

// ParseActorID validates and converts a string into an ActorID.
func ParseActorID(s string) (ActorID, error) {
	if s == "" {
		return ActorID{}, dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ActorID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "actor id must be a valid UUID")
	}
	if u == uuid.Nil {
		return ActorID{}, dErrors.New(dErrors.CodeInvalidInput, "actor id must not be the nil UUID")
	}
	return ActorID(u), nil
}

// IsNil reports whether the actor ID is unset.
func (a ActorID) IsNil() bool {
	return uuid.UUID(a) == uuid.Nil
}

func (a ActorID) String() string {
	return uuid.UUID(a).String()
}

// ParseShipmentHash validates a shipment reference. The value is opaque but
// must be printable, non-empty, and bounded so it is safe to log and store.
func ParseShipmentHash(s string) (ShipmentHash, error) {
	if err := validateRef(s); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid shipment hash")
	}
	return ShipmentHash(s), nil
}

func (h ShipmentHash) String() string { return string(h) }

// ParseContainerID validates a container identifier as decoded from a QR
// payload. Only the character set we ever emit is accepted; anything else is
// treated as a malformed code, not queried against the backend.
func ParseContainerID(s string) (ContainerID, error) {
	if err := validateRef(s); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid container id")
	}
	return ContainerID(s), nil
}

func (c ContainerID) String() string { return string(c) }

// validateRef enforces the shared shape of shipment and container references:
// non-empty, bounded, and limited to alphanumerics plus '-', '_', ':' and '.'.
func validateRef(s string) error {
	if s == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier is required")
	}
	if len(s) > maxIDLength {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier exceeds maximum length")
	}
	if strings.IndexFunc(s, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		case r == '-' || r == '_' || r == ':' || r == '.':
			return false
		}
		return true
	}) >= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "identifier contains illegal characters")
	}
	return nil
}
