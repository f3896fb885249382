package shipment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"cargotrace/internal/audit"
	"cargotrace/internal/lifecycle"
	"cargotrace/internal/shipment/metrics"
	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
	"cargotrace/pkg/platform/sentinel"
	"cargotrace/pkg/requestcontext"
)

// Auditor receives audit events from the service. Satisfied by
// audit.Publisher; tests substitute a recording fake.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

// ProgressInvalidator drops cached progress snapshots after a manual
// container advance. Satisfied by progress.Cache.
type ProgressInvalidator interface {
	Invalidate(ctx context.Context, hash domain.ShipmentHash) error
}

// Service implements supplier and admin shipment operations: create, lock,
// stage assignment, explicit container advance, and document attachment.
type Service struct {
	store       Store
	auditor     Auditor
	invalidator ProgressInvalidator
	logger      *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithProgressInvalidator(inv ProgressInvalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

func NewService(store Store, auditor Auditor, opts ...Option) *Service {
	s := &Service{
		store:   store,
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams describes a new shipment. The supplier comes from the
// request context, never from the payload.
type CreateParams struct {
	BatchID            string
	NumberOfContainers int
	TotalQuantity      int
}

// Create registers a shipment and mints its containers. The shipment hash
// is derived rather than chosen so QR payloads cannot collide with or
// impersonate existing shipments.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Shipment, []Container, error) {
	supplier := requestcontext.ActorID(ctx)
	if supplier.IsNil() {
		return nil, nil, dErrors.New(dErrors.CodeUnauthorized, "no authenticated actor")
	}
	if role := requestcontext.ActorRole(ctx); role != domain.RoleSupplier && role != domain.RoleAdmin {
		return nil, nil, dErrors.New(dErrors.CodeForbidden, "only suppliers can create shipments")
	}
	if params.BatchID == "" {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "batch_id is required")
	}
	if params.NumberOfContainers < 1 {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "number_of_containers must be at least 1")
	}
	if params.TotalQuantity < params.NumberOfContainers {
		return nil, nil, dErrors.New(dErrors.CodeValidation, "total_quantity must cover every container")
	}

	now := requestcontext.Now(ctx)
	hash := deriveHash(params.BatchID, supplier.String(), uuid.NewString())

	sh := &Shipment{
		ShipmentHash:         hash,
		BatchID:              params.BatchID,
		Supplier:             supplier,
		NumberOfContainers:   params.NumberOfContainers,
		TotalQuantity:        params.TotalQuantity,
		QuantityPerContainer: params.TotalQuantity / params.NumberOfContainers,
		Status:               lifecycle.ShipmentCreated,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	containers := make([]Container, params.NumberOfContainers)
	for i := range containers {
		containers[i] = Container{
			ContainerID:     containerID(hash, i+1),
			ShipmentHash:    hash,
			ContainerNumber: i + 1,
			Quantity:        sh.QuantityPerContainer,
			Status:          lifecycle.ContainerCreated,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	if err := s.store.CreateShipment(ctx, sh, containers); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, nil, dErrors.New(dErrors.CodeConflict, "shipment hash already in use")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "create shipment")
	}

	metrics.ShipmentsCreated.Inc()
	s.logger.InfoContext(ctx, "shipment created",
		"shipment_hash", hash,
		"batch_id", params.BatchID,
		"containers", params.NumberOfContainers,
	)
	s.auditor.Emit(ctx, audit.Event{
		Actor:        supplier,
		Role:         requestcontext.ActorRole(ctx),
		Action:       audit.ActionShipmentCreated,
		ShipmentHash: hash,
	})

	return sh, containers, nil
}

// Get returns a shipment with its containers.
func (s *Service) Get(ctx context.Context, hash domain.ShipmentHash) (*Shipment, []Container, error) {
	sh, err := s.store.FindShipment(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "shipment not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "find shipment")
	}
	containers, err := s.store.ListContainers(ctx, hash)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "list containers")
	}
	return sh, containers, nil
}

// Lock anchors the shipment and flips its status to READY_FOR_DISPATCH.
// Only the owning supplier or an admin may lock; locking is one-way.
func (s *Service) Lock(ctx context.Context, hash domain.ShipmentHash) (*Shipment, error) {
	sh, _, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(ctx, sh); err != nil {
		return nil, err
	}

	txHash := anchorTxHash(hash, requestcontext.Now(ctx).UnixNano())
	if err := s.store.LockShipment(ctx, hash, txHash); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeConflict, "shipment is already locked")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "lock shipment")
	}
	if err := s.store.SetShipmentStatus(ctx, hash, lifecycle.ShipmentReadyForDispatch); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "set shipment status")
	}

	metrics.ShipmentsLocked.Inc()
	s.logger.InfoContext(ctx, "shipment locked", "shipment_hash", hash, "tx_hash", txHash)
	s.auditor.Emit(ctx, audit.Event{
		Actor:        requestcontext.ActorID(ctx),
		Role:         requestcontext.ActorRole(ctx),
		Action:       audit.ActionShipmentLocked,
		ShipmentHash: hash,
	})

	sh, err = s.store.FindShipment(ctx, hash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reload shipment")
	}
	return sh, nil
}

// Assign records the actor authorized to scan at a stage. Re-assigning a
// stage replaces the previous actor.
func (s *Service) Assign(ctx context.Context, hash domain.ShipmentHash, role domain.Role, actor domain.ActorID) (*Shipment, error) {
	if !role.IsStageRole() {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("role %s cannot hold a stage assignment", role))
	}
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "actor_id is required")
	}

	sh, _, err := s.Get(ctx, hash)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnerOrAdmin(ctx, sh); err != nil {
		return nil, err
	}

	a := Assignment{Actor: actor, AssignedAt: requestcontext.Now(ctx)}
	if err := s.store.Assign(ctx, hash, role, a); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "assign stage actor")
	}

	metrics.AssignmentsTotal.WithLabelValues(string(role)).Inc()
	s.logger.InfoContext(ctx, "stage assigned",
		"shipment_hash", hash,
		"role", role,
		"assigned_actor", actor,
	)
	s.auditor.Emit(ctx, audit.Event{
		Actor:        requestcontext.ActorID(ctx),
		Role:         role,
		Action:       audit.ActionShipmentAssigned,
		ShipmentHash: hash,
	})

	sh, err = s.store.FindShipment(ctx, hash)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reload shipment")
	}
	return sh, nil
}

// Advance is the manual fallback for moving a single container when a scan
// cannot be performed (damaged QR, dead device). It applies the same
// transition rules as a scan: the caller's role must match the next stage
// and the shipment must be locked.
func (s *Service) Advance(ctx context.Context, hash domain.ShipmentHash, containerID domain.ContainerID) (*Container, error) {
	sh, err := s.store.FindShipment(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "shipment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find shipment")
	}

	c, err := s.store.FindContainer(ctx, containerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "container not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find container")
	}
	if c.ShipmentHash != hash {
		return nil, dErrors.New(dErrors.CodeNotFound, "container does not belong to this shipment")
	}

	role := requestcontext.ActorRole(ctx)
	if rej := lifecycle.CanTransition(c.Status, role, sh.IsLocked); rej != nil {
		return nil, rejectionError(rej)
	}
	target, _ := lifecycle.TargetStatus(role)

	if err := s.store.AdvanceContainer(ctx, containerID, c.Status, target); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "container was advanced concurrently")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "advance container")
	}

	if err := s.rederiveStatus(ctx, hash, sh.IsLocked); err != nil {
		return nil, err
	}
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, hash); err != nil {
			s.logger.WarnContext(ctx, "progress cache invalidation failed", "shipment_hash", hash, "error", err)
		}
	}

	metrics.ContainersAdvanced.WithLabelValues(string(target)).Inc()
	s.logger.InfoContext(ctx, "container advanced manually",
		"shipment_hash", hash,
		"container_id", containerID,
		"from", c.Status,
		"to", target,
	)
	s.auditor.Emit(ctx, audit.Event{
		Actor:        requestcontext.ActorID(ctx),
		Role:         role,
		Action:       audit.ActionShipmentAdvanced,
		ShipmentHash: hash,
		ContainerID:  containerID,
	})

	c, err = s.store.FindContainer(ctx, containerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "reload container")
	}
	return c, nil
}

// AddDocument attaches a supporting document reference to the shipment.
func (s *Service) AddDocument(ctx context.Context, hash domain.ShipmentHash, doc Document) error {
	sh, _, err := s.Get(ctx, hash)
	if err != nil {
		return err
	}
	if err := s.requireOwnerOrAdmin(ctx, sh); err != nil {
		return err
	}
	if doc.Name == "" || doc.URI == "" {
		return dErrors.New(dErrors.CodeValidation, "document name and uri are required")
	}
	doc.UploadedAt = requestcontext.Now(ctx)

	if err := s.store.AddDocument(ctx, hash, doc); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "add document")
	}
	return nil
}

// ListAssigned returns the shipments assigned to the calling actor's stage.
func (s *Service) ListAssigned(ctx context.Context) ([]Shipment, error) {
	actor := requestcontext.ActorID(ctx)
	role := requestcontext.ActorRole(ctx)
	if actor.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "no authenticated actor")
	}
	if !role.IsStageRole() {
		return nil, dErrors.New(dErrors.CodeForbidden, fmt.Sprintf("role %s has no stage assignments", role))
	}

	shipments, err := s.store.ListAssigned(ctx, actor, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list assigned shipments")
	}
	return shipments, nil
}

// rederiveStatus recomputes the shipment projection from container state
// and persists it.
func (s *Service) rederiveStatus(ctx context.Context, hash domain.ShipmentHash, locked bool) error {
	containers, err := s.store.ListContainers(ctx, hash)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list containers")
	}
	statuses := make([]lifecycle.ContainerStatus, len(containers))
	for i, c := range containers {
		statuses[i] = c.Status
	}
	derived := lifecycle.DeriveShipmentStatus(statuses, locked)
	if err := s.store.SetShipmentStatus(ctx, hash, derived); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "set shipment status")
	}
	return nil
}

func (s *Service) requireOwnerOrAdmin(ctx context.Context, sh *Shipment) error {
	actor := requestcontext.ActorID(ctx)
	role := requestcontext.ActorRole(ctx)
	if role == domain.RoleAdmin {
		return nil
	}
	if role == domain.RoleSupplier && actor == sh.Supplier {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "only the owning supplier or an admin may modify this shipment")
}

// rejectionError maps a transition rejection onto the HTTP-facing error
// taxonomy for the manual advance path. The scan path reports rejections in
// the verdict body instead.
func rejectionError(rej *lifecycle.Rejection) error {
	switch rej.Reason {
	case lifecycle.ReasonWrongActorRole, lifecycle.ReasonShipmentNotYours:
		return dErrors.New(dErrors.CodeForbidden, rej.Error())
	default:
		return dErrors.New(dErrors.CodeConflict, rej.Error())
	}
}

// deriveHash produces the shipment's QR-encoded identity: a 64-char hex
// digest over batch, supplier, and a random component.
func deriveHash(parts ...string) domain.ShipmentHash {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return domain.ShipmentHash(hex.EncodeToString(sum[:]))
}

// anchorTxHash fabricates the ledger anchor reference recorded at lock
// time. The shape matches what a chain client would return so downstream
// consumers need no special casing.
func anchorTxHash(hash domain.ShipmentHash, nanos int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", hash, nanos)))
	return "0x" + hex.EncodeToString(sum[:])
}

// containerID builds the printable container identifier, e.g.
// "3FA85F64B2C1-C001".
func containerID(hash domain.ShipmentHash, number int) domain.ContainerID {
	prefix := strings.ToUpper(string(hash)[:12])
	return domain.ContainerID(fmt.Sprintf("%s-C%03d", prefix, number))
}
