package progress

import (
	"context"
	"errors"

	"cargotrace/internal/lifecycle"
	"cargotrace/internal/shipment"
	"cargotrace/pkg/domain"
	dErrors "cargotrace/pkg/domain-errors"
	"cargotrace/pkg/platform/sentinel"
)

// Source loads progress snapshots. Implemented by StoreSource; the poller
// and service depend on the interface so tests can script loads.
type Source interface {
	Load(ctx context.Context, hash domain.ShipmentHash, stage lifecycle.ContainerStatus) (Snapshot, error)
}

// StoreSource computes snapshots from the shipment store. When container
// rows are unavailable it degrades to the shipment-level container count
// with zero scanned rather than failing the view.
type StoreSource struct {
	store shipment.Store
}

func NewStoreSource(store shipment.Store) *StoreSource {
	return &StoreSource{store: store}
}

func (s *StoreSource) Load(ctx context.Context, hash domain.ShipmentHash, stage lifecycle.ContainerStatus) (Snapshot, error) {
	sh, err := s.store.FindShipment(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Snapshot{}, dErrors.New(dErrors.CodeNotFound, "shipment not found")
		}
		return Snapshot{}, dErrors.Wrap(err, dErrors.CodeInternal, "find shipment")
	}

	containers, err := s.store.ListContainers(ctx, hash)
	if err != nil || len(containers) == 0 {
		// Degraded view: container data missing, fall back to the
		// shipment-level count with nothing scanned.
		return Snapshot{
			Total:   sh.NumberOfContainers,
			Scanned: 0,
			Pending: sh.NumberOfContainers,
		}, nil
	}

	statuses := make([]lifecycle.ContainerStatus, len(containers))
	for i := range containers {
		statuses[i] = containers[i].Status
	}
	return Compute(statuses, stage), nil
}
