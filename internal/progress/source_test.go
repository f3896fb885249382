package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargotrace/internal/lifecycle"
	"cargotrace/internal/shipment"
	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
)

func seedShipment(t *testing.T, store *shipment.InMemory, hash domain.ShipmentHash, statuses []lifecycle.ContainerStatus) {
	t.Helper()
	now := time.Now()
	sh := &shipment.Shipment{
		ShipmentHash:       hash,
		BatchID:            "B",
		Supplier:           domain.ActorID(uuid.New()),
		NumberOfContainers: len(statuses),
		Status:             lifecycle.ShipmentCreated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	containers := make([]shipment.Container, len(statuses))
	for i, st := range statuses {
		containers[i] = shipment.Container{
			ContainerID:     domain.ContainerID(string(hash) + "-C" + string(rune('1'+i))),
			ShipmentHash:    hash,
			ContainerNumber: i + 1,
			Status:          st,
		}
	}
	require.NoError(t, store.CreateShipment(context.Background(), sh, containers))
}

func TestStoreSourceLoad(t *testing.T) {
	store := shipment.NewInMemory()
	seedShipment(t, store, "SHP-001", []lifecycle.ContainerStatus{
		lifecycle.ContainerInTransit,
		lifecycle.ContainerInTransit,
		lifecycle.ContainerCreated,
	})

	snap, err := NewStoreSource(store).Load(context.Background(), "SHP-001", lifecycle.ContainerInTransit)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{Total: 3, Scanned: 2, Pending: 1}, snap)
}

func TestStoreSourceNotFound(t *testing.T) {
	_, err := NewStoreSource(shipment.NewInMemory()).Load(context.Background(), "missing", lifecycle.ContainerInTransit)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

// brokenContainerStore simulates container rows being unavailable while the
// shipment row still loads.
type brokenContainerStore struct {
	shipment.Store
}

func (s *brokenContainerStore) ListContainers(context.Context, domain.ShipmentHash) ([]shipment.Container, error) {
	return nil, errors.New("containers table unavailable")
}

func TestStoreSourceFallsBackToShipmentCount(t *testing.T) {
	store := shipment.NewInMemory()
	seedShipment(t, store, "SHP-001", []lifecycle.ContainerStatus{
		lifecycle.ContainerDelivered,
		lifecycle.ContainerDelivered,
	})

	snap, err := NewStoreSource(&brokenContainerStore{Store: store}).Load(context.Background(), "SHP-001", lifecycle.ContainerDelivered)
	require.NoError(t, err)
	// Shipment-level count, zero scanned, never ready.
	assert.Equal(t, Snapshot{Total: 2, Scanned: 0, Pending: 2}, snap)
}
