package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: shipment/container/actor does not exist in the store
// - ErrConflict: compare-and-set advance lost to a concurrent writer
// - ErrAlreadyUsed: identifier already taken (shipment hash, actor email)
// - ErrInvalidState: entity in wrong lifecycle state for the operation
// - ErrUnavailable: backing service (postgres, redis, kafka) unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
