// Package scan implements both sides of the scan flow: QR payload parsing,
// the server-side verification service that applies lifecycle rules and
// advances containers, and the client-side submission pipeline used by
// handheld scanner devices.
package scan

import (
	"strings"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
)

// CodeKind distinguishes what a QR payload identifies.
type CodeKind string

const (
	// KindContainer is a container label: the bare container identifier.
	KindContainer CodeKind = "container"
	// KindShipment is a manifest code: "SHIPMENT:" followed by the hash.
	KindShipment CodeKind = "shipment"
)

const shipmentCodePrefix = "SHIPMENT:"

// Code is a successfully parsed QR payload.
type Code struct {
	Kind         CodeKind
	ContainerID  domain.ContainerID
	ShipmentHash domain.ShipmentHash
}

// ParseCode classifies and validates a raw QR payload. Validation is purely
// local: a malformed payload is rejected here with INVALID_QR_FORMAT and
// never reaches the network.
func ParseCode(payload string) (Code, *lifecycle.Rejection) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Code{}, lifecycle.Reject(lifecycle.ReasonInvalidQRFormat)
	}

	if rest, ok := strings.CutPrefix(payload, shipmentCodePrefix); ok {
		hash, err := domain.ParseShipmentHash(rest)
		if err != nil {
			return Code{}, lifecycle.Reject(lifecycle.ReasonInvalidQRFormat)
		}
		return Code{Kind: KindShipment, ShipmentHash: hash}, nil
	}

	id, err := domain.ParseContainerID(payload)
	if err != nil {
		return Code{}, lifecycle.Reject(lifecycle.ReasonInvalidQRFormat)
	}
	return Code{Kind: KindContainer, ContainerID: id}, nil
}
