package scan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"cargotrace/internal/audit"
	"cargotrace/internal/lifecycle"
	"cargotrace/internal/scan/metrics"
	"cargotrace/internal/shipment"
	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
	"cargotrace/pkg/platform/sentinel"
)

// Verifier is the narrow interface the pipeline submits against. The server
// side is Service; scanner devices use Client over HTTP.
type Verifier interface {
	Verify(ctx context.Context, req VerifyRequest) (*Verdict, error)
}

// Auditor receives scan audit events. Satisfied by audit.Publisher.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

// ProgressInvalidator drops cached progress snapshots for a shipment once a
// container has moved, so the progress endpoint never serves the pre-scan
// view for a full cache TTL. Satisfied by progress.Cache.
type ProgressInvalidator interface {
	Invalidate(ctx context.Context, hash domain.ShipmentHash) error
}

// Service verifies scan attempts against lifecycle rules and applies
// accepted transitions. Every attempt, accepted or rejected, is audited.
type Service struct {
	store       shipment.Store
	auditor     Auditor
	invalidator ProgressInvalidator
	logger      *slog.Logger
	tracer      trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithProgressInvalidator(inv ProgressInvalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

func NewService(store shipment.Store, auditor Auditor, opts ...Option) *Service {
	s := &Service{
		store:   store,
		auditor: auditor,
		logger:  slog.Default(),
		tracer:  otel.Tracer("cargotrace/scan"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs the full verification chain for one scan attempt:
//
//	container lookup -> shipment load -> lock gate -> assignment gate ->
//	lifecycle transition check -> compare-and-set advance -> re-aggregate
//
// Rejections come back as verdicts with a reason from the closed set; a Go
// error means infrastructure failure, and nothing was applied.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) (*Verdict, error) {
	ctx, span := s.tracer.Start(ctx, "scan.Verify")
	defer span.End()

	start := time.Now()
	v, err := s.verify(ctx, req)
	metrics.VerifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	if v.Accepted {
		metrics.ScansTotal.WithLabelValues("accepted").Inc()
		s.invalidateProgress(ctx, v.Shipment.ShipmentHash)
	} else {
		metrics.ScansTotal.WithLabelValues("rejected").Inc()
		metrics.RejectionsTotal.WithLabelValues(string(v.Reason)).Inc()
	}
	s.audit(ctx, req, v)
	return v, nil
}

func (s *Service) verify(ctx context.Context, req VerifyRequest) (*Verdict, error) {
	c, err := s.store.FindContainer(ctx, req.ContainerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return rejected(lifecycle.ReasonContainerNotFound), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find container")
	}

	sh, err := s.store.FindShipment(ctx, c.ShipmentHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find shipment")
	}

	if !sh.IsLocked {
		return rejected(lifecycle.ReasonShipmentNotLocked), nil
	}
	a := sh.AssignmentFor(req.Role)
	if a == nil || a.Actor != req.Actor {
		return rejected(lifecycle.ReasonShipmentNotYours), nil
	}
	if rej := lifecycle.CanTransition(c.Status, req.Role, sh.IsLocked); rej != nil {
		return rejected(rej.Reason), nil
	}
	target, _ := lifecycle.TargetStatus(req.Role)

	if err := s.store.AdvanceContainer(ctx, req.ContainerID, c.Status, target); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the race to a concurrent scan that already applied
			// this stage.
			return rejected(lifecycle.ReasonDuplicateScan), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "advance container")
	}

	containers, err := s.store.ListContainers(ctx, c.ShipmentHash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list containers")
	}
	statuses := make([]lifecycle.ContainerStatus, len(containers))
	for i := range containers {
		statuses[i] = containers[i].Status
	}

	derived := lifecycle.DeriveShipmentStatus(statuses, sh.IsLocked)
	statusChanged := derived != sh.Status
	if statusChanged {
		if err := s.store.SetShipmentStatus(ctx, c.ShipmentHash, derived); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "set shipment status")
		}
	}

	scanned := lifecycle.CountAtOrPast(statuses, target)
	total := len(statuses)

	return &Verdict{
		Accepted: true,
		Container: &ContainerResult{
			ContainerID:    c.ContainerID,
			PreviousStatus: c.Status,
			CurrentStatus:  target,
		},
		Shipment: &ShipmentResult{
			ShipmentHash:       sh.ShipmentHash,
			PreviousStatus:     sh.Status,
			CurrentStatus:      derived,
			StatusChanged:      statusChanged,
			AllComplete:        total > 0 && scanned == total,
			ScannedCount:       scanned,
			PendingCount:       total - scanned,
			NumberOfContainers: total,
		},
		Concern: req.Concern,
	}, nil
}

// invalidateProgress drops the shipment's cached snapshots after an applied
// transition. Best effort: the cache TTL still bounds staleness if Redis is
// briefly unreachable.
func (s *Service) invalidateProgress(ctx context.Context, hash domain.ShipmentHash) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, hash); err != nil {
		s.logger.WarnContext(ctx, "progress cache invalidation failed", "shipment_hash", hash, "error", err)
	}
}

func (s *Service) audit(ctx context.Context, req VerifyRequest, v *Verdict) {
	event := audit.Event{
		Actor:       req.Actor,
		Role:        req.Role,
		ContainerID: req.ContainerID,
		Concern:     req.Concern,
	}
	if v.Shipment != nil {
		event.ShipmentHash = v.Shipment.ShipmentHash
	}
	if v.Accepted {
		event.Action = audit.ActionScanAccepted
		s.logger.InfoContext(ctx, "scan accepted",
			"container_id", req.ContainerID,
			"role", req.Role,
			"to", v.Container.CurrentStatus,
		)
	} else {
		event.Action = audit.ActionScanRejected
		event.Reason = string(v.Reason)
		s.logger.InfoContext(ctx, "scan rejected",
			"container_id", req.ContainerID,
			"role", req.Role,
			"reason", v.Reason,
		)
	}
	s.auditor.Emit(ctx, event)
}
