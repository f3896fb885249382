package progress

import (
	"context"
	"log/slog"
	"time"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
)

// Poller refreshes a tracker for one shipment and stage on an interval,
// independent of scan events. Each tick takes a fresh sequence number so
// overlapping refreshes resolve last-write-wins through the tracker.
type Poller struct {
	source   Source
	tracker  *Tracker
	hash     domain.ShipmentHash
	stage    lifecycle.ContainerStatus
	interval time.Duration
	logger   *slog.Logger
}

func NewPoller(source Source, tracker *Tracker, hash domain.ShipmentHash, stage lifecycle.ContainerStatus, interval time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		source:   source,
		tracker:  tracker,
		hash:     hash,
		stage:    stage,
		interval: interval,
		logger:   logger,
	}
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	seq := p.tracker.Begin()
	snap, err := p.source.Load(ctx, p.hash, p.stage)
	if err != nil {
		p.logger.WarnContext(ctx, "progress refresh failed", "shipment_hash", p.hash, "error", err)
		return
	}
	p.tracker.Apply(seq, snap)
}
