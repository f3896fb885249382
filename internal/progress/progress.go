// Package progress computes and serves the stage-relative scan progress of
// a shipment: how many containers the calling actor's stage has processed,
// how many remain, and whether the shipment is ready for an explicit status
// advance.
package progress

import (
	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
)

// Snapshot is one consistent view of shipment progress for a stage.
// Scanned counts containers at or past the stage's target status, so a
// container that skipped visibility of an earlier poll still counts.
type Snapshot struct {
	Total   int `json:"total"`
	Scanned int `json:"scanned"`
	Pending int `json:"pending"`

	// ReadyToAdvance is true once every container has been processed at
	// this stage. It gates the explicit advance action; nothing advances
	// automatically.
	ReadyToAdvance bool `json:"ready_to_advance"`
}

// Compute aggregates container statuses relative to a stage target.
func Compute(statuses []lifecycle.ContainerStatus, stage lifecycle.ContainerStatus) Snapshot {
	total := len(statuses)
	scanned := lifecycle.CountAtOrPast(statuses, stage)
	return Snapshot{
		Total:          total,
		Scanned:        scanned,
		Pending:        total - scanned,
		ReadyToAdvance: total > 0 && scanned == total,
	}
}

// StageFor resolves the container status a role's progress is measured
// against. Non-stage roles (supplier, admin) observe transporter progress,
// the first stage after dispatch.
func StageFor(role domain.Role) lifecycle.ContainerStatus {
	if target, ok := lifecycle.TargetStatus(role); ok {
		return target
	}
	return lifecycle.ContainerInTransit
}
