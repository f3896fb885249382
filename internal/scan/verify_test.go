package scan

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargotrace/internal/audit"
	"cargotrace/internal/lifecycle"
	"cargotrace/internal/shipment"
	"cargotrace/pkg/domain"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingAuditor) last() audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (r *recordingAuditor) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

type fixture struct {
	store   *shipment.InMemory
	auditor *recordingAuditor
	svc     *Service

	hash        domain.ShipmentHash
	containers  []shipment.Container
	transporter domain.ActorID
	warehouse   domain.ActorID
	retailer    domain.ActorID
}

// newFixture seeds a locked shipment with n containers and all three stage
// assignments in place.
func newFixture(t *testing.T, n int, locked bool) *fixture {
	t.Helper()

	f := &fixture{
		store:       shipment.NewInMemory(),
		auditor:     &recordingAuditor{},
		hash:        "SHP-001",
		transporter: domain.ActorID(uuid.New()),
		warehouse:   domain.ActorID(uuid.New()),
		retailer:    domain.ActorID(uuid.New()),
	}
	f.svc = NewService(f.store, f.auditor)

	ctx := context.Background()
	now := time.Now()
	sh := &shipment.Shipment{
		ShipmentHash:       f.hash,
		BatchID:            "BATCH-1",
		Supplier:           domain.ActorID(uuid.New()),
		NumberOfContainers: n,
		Status:             lifecycle.ShipmentCreated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.containers = make([]shipment.Container, n)
	for i := range f.containers {
		f.containers[i] = shipment.Container{
			ContainerID:     domain.ContainerID(fmt.Sprintf("SHP001-C%03d", i+1)),
			ShipmentHash:    f.hash,
			ContainerNumber: i + 1,
			Status:          lifecycle.ContainerCreated,
		}
	}
	require.NoError(t, f.store.CreateShipment(ctx, sh, f.containers))

	if locked {
		require.NoError(t, f.store.LockShipment(ctx, f.hash, "0xanchor"))
		require.NoError(t, f.store.SetShipmentStatus(ctx, f.hash, lifecycle.ShipmentReadyForDispatch))
	}
	for role, actor := range map[domain.Role]domain.ActorID{
		domain.RoleTransporter: f.transporter,
		domain.RoleWarehouse:   f.warehouse,
		domain.RoleRetailer:    f.retailer,
	} {
		require.NoError(t, f.store.Assign(ctx, f.hash, role, shipment.Assignment{Actor: actor, AssignedAt: now}))
	}
	return f
}

func (f *fixture) scan(t *testing.T, id domain.ContainerID, actor domain.ActorID, role domain.Role) *Verdict {
	t.Helper()
	v, err := f.svc.Verify(context.Background(), VerifyRequest{ContainerID: id, Actor: actor, Role: role})
	require.NoError(t, err)
	return v
}

func TestVerifyAccepted(t *testing.T) {
	f := newFixture(t, 2, true)

	v := f.scan(t, f.containers[0].ContainerID, f.transporter, domain.RoleTransporter)
	require.True(t, v.Accepted)
	assert.Equal(t, lifecycle.ContainerCreated, v.Container.PreviousStatus)
	assert.Equal(t, lifecycle.ContainerInTransit, v.Container.CurrentStatus)

	require.NotNil(t, v.Shipment)
	assert.Equal(t, lifecycle.ShipmentReadyForDispatch, v.Shipment.PreviousStatus)
	assert.Equal(t, lifecycle.ShipmentInTransit, v.Shipment.CurrentStatus)
	assert.True(t, v.Shipment.StatusChanged)
	assert.Equal(t, 1, v.Shipment.ScannedCount)
	assert.Equal(t, 1, v.Shipment.PendingCount)
	assert.False(t, v.Shipment.AllComplete)

	assert.Equal(t, audit.ActionScanAccepted, f.auditor.last().Action)
}

func TestVerifyRejections(t *testing.T) {
	t.Run("container not found", func(t *testing.T) {
		f := newFixture(t, 1, true)
		v := f.scan(t, "GHOST-C001", f.transporter, domain.RoleTransporter)
		assert.False(t, v.Accepted)
		assert.Equal(t, lifecycle.ReasonContainerNotFound, v.Reason)
	})

	t.Run("shipment not locked", func(t *testing.T) {
		f := newFixture(t, 1, false)
		v := f.scan(t, f.containers[0].ContainerID, f.transporter, domain.RoleTransporter)
		assert.False(t, v.Accepted)
		assert.Equal(t, lifecycle.ReasonShipmentNotLocked, v.Reason)
	})

	t.Run("not assigned to actor", func(t *testing.T) {
		f := newFixture(t, 1, true)
		v := f.scan(t, f.containers[0].ContainerID, domain.ActorID(uuid.New()), domain.RoleTransporter)
		assert.False(t, v.Accepted)
		assert.Equal(t, lifecycle.ReasonShipmentNotYours, v.Reason)
	})

	t.Run("skip-ahead role", func(t *testing.T) {
		f := newFixture(t, 1, true)
		v := f.scan(t, f.containers[0].ContainerID, f.retailer, domain.RoleRetailer)
		assert.False(t, v.Accepted)
		assert.Equal(t, lifecycle.ReasonWrongActorRole, v.Reason)
	})

	t.Run("repeat scan at same stage", func(t *testing.T) {
		f := newFixture(t, 1, true)
		first := f.scan(t, f.containers[0].ContainerID, f.transporter, domain.RoleTransporter)
		require.True(t, first.Accepted)

		second := f.scan(t, f.containers[0].ContainerID, f.transporter, domain.RoleTransporter)
		assert.False(t, second.Accepted)
		assert.Equal(t, lifecycle.ReasonAlreadyAtOrPast, second.Reason)
	})
}

func TestVerifyRejectionsAreAudited(t *testing.T) {
	f := newFixture(t, 1, false)
	v := f.scan(t, f.containers[0].ContainerID, f.transporter, domain.RoleTransporter)
	require.False(t, v.Accepted)

	require.Equal(t, 1, f.auditor.count())
	event := f.auditor.last()
	assert.Equal(t, audit.ActionScanRejected, event.Action)
	assert.Equal(t, string(lifecycle.ReasonShipmentNotLocked), event.Reason)
}

// staleReadStore serves a container status one step behind the truth so the
// verify path passes its checks but loses the compare-and-set.
type staleReadStore struct {
	shipment.Store
	stale lifecycle.ContainerStatus
}

func (s *staleReadStore) FindContainer(ctx context.Context, id domain.ContainerID) (*shipment.Container, error) {
	c, err := s.Store.FindContainer(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = s.stale
	return c, nil
}

func TestVerifyDuplicateScanOnLostRace(t *testing.T) {
	f := newFixture(t, 1, true)
	id := f.containers[0].ContainerID

	// The winning scan has already applied IN_TRANSIT.
	winner := f.scan(t, id, f.transporter, domain.RoleTransporter)
	require.True(t, winner.Accepted)

	loser := NewService(&staleReadStore{Store: f.store, stale: lifecycle.ContainerCreated}, f.auditor)
	v, err := loser.Verify(context.Background(), VerifyRequest{
		ContainerID: id,
		Actor:       f.transporter,
		Role:        domain.RoleTransporter,
	})
	require.NoError(t, err)
	assert.False(t, v.Accepted)
	assert.Equal(t, lifecycle.ReasonDuplicateScan, v.Reason)
}

// TestVerifyRetailerWalkthrough drives shipment SHP-001 through the
// retailer's final stage: three containers at the warehouse, scanned one by
// one until the shipment is delivered.
func TestVerifyRetailerWalkthrough(t *testing.T) {
	f := newFixture(t, 3, true)
	ctx := context.Background()

	// Bring every container to AT_WAREHOUSE via the earlier stages.
	for _, c := range f.containers {
		require.True(t, f.scan(t, c.ContainerID, f.transporter, domain.RoleTransporter).Accepted)
	}
	for _, c := range f.containers {
		require.True(t, f.scan(t, c.ContainerID, f.warehouse, domain.RoleWarehouse).Accepted)
	}

	sh, err := f.store.FindShipment(ctx, f.hash)
	require.NoError(t, err)
	require.Equal(t, lifecycle.ShipmentAtWarehouse, sh.Status)

	v1 := f.scan(t, f.containers[0].ContainerID, f.retailer, domain.RoleRetailer)
	require.True(t, v1.Accepted)
	assert.Equal(t, 1, v1.Shipment.ScannedCount)
	assert.Equal(t, 2, v1.Shipment.PendingCount)
	assert.False(t, v1.Shipment.AllComplete)
	assert.Equal(t, lifecycle.ShipmentAtWarehouse, v1.Shipment.CurrentStatus)
	assert.False(t, v1.Shipment.StatusChanged)

	v2 := f.scan(t, f.containers[1].ContainerID, f.retailer, domain.RoleRetailer)
	require.True(t, v2.Accepted)
	assert.Equal(t, 2, v2.Shipment.ScannedCount)
	assert.False(t, v2.Shipment.AllComplete)

	v3 := f.scan(t, f.containers[2].ContainerID, f.retailer, domain.RoleRetailer)
	require.True(t, v3.Accepted)
	assert.Equal(t, 3, v3.Shipment.ScannedCount)
	assert.Equal(t, 0, v3.Shipment.PendingCount)
	assert.True(t, v3.Shipment.AllComplete)
	assert.Equal(t, lifecycle.ShipmentDelivered, v3.Shipment.CurrentStatus)
	assert.True(t, v3.Shipment.StatusChanged)

	// And a fourth scan of an already-delivered container is refused.
	again := f.scan(t, f.containers[0].ContainerID, f.retailer, domain.RoleRetailer)
	assert.False(t, again.Accepted)
	assert.Equal(t, lifecycle.ReasonAlreadyAtOrPast, again.Reason)
}

type recordingInvalidator struct {
	mu     sync.Mutex
	hashes []domain.ShipmentHash
}

func (r *recordingInvalidator) Invalidate(_ context.Context, hash domain.ShipmentHash) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hashes = append(r.hashes, hash)
	return nil
}

// An accepted scan must drop the shipment's cached progress snapshots;
// otherwise the progress endpoint keeps serving the pre-scan counts until
// the cache TTL runs out.
func TestVerifyAcceptedDropsCachedProgress(t *testing.T) {
	f := newFixture(t, 2, true)
	inv := &recordingInvalidator{}
	svc := NewService(f.store, f.auditor, WithProgressInvalidator(inv))

	v, err := svc.Verify(context.Background(), VerifyRequest{
		ContainerID: f.containers[0].ContainerID,
		Actor:       f.transporter,
		Role:        domain.RoleTransporter,
	})
	require.NoError(t, err)
	require.True(t, v.Accepted)
	require.Len(t, inv.hashes, 1)
	assert.Equal(t, f.hash, inv.hashes[0])

	// A rejected attempt moved nothing; the cache stays untouched.
	v, err = svc.Verify(context.Background(), VerifyRequest{
		ContainerID: f.containers[0].ContainerID,
		Actor:       f.transporter,
		Role:        domain.RoleTransporter,
	})
	require.NoError(t, err)
	require.False(t, v.Accepted)
	assert.Len(t, inv.hashes, 1)
}

func TestVerifyConcernTravelsWithAcceptedScan(t *testing.T) {
	f := newFixture(t, 1, true)

	v, err := f.svc.Verify(context.Background(), VerifyRequest{
		ContainerID: f.containers[0].ContainerID,
		Actor:       f.transporter,
		Role:        domain.RoleTransporter,
		Concern:     "box corner crushed",
	})
	require.NoError(t, err)
	require.True(t, v.Accepted)
	assert.Equal(t, "box corner crushed", v.Concern)

	// The concern annotates the audit event; it never becomes a transition.
	event := f.auditor.last()
	assert.Equal(t, "box corner crushed", event.Concern)
	assert.Equal(t, lifecycle.ContainerInTransit, v.Container.CurrentStatus)
}
