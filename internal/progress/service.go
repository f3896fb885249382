package progress

import (
	"context"
	"log/slog"

	"cargotrace/pkg/domain"
)

// Service serves progress snapshots, reading through the Redis cache when
// one is configured. Cache trouble degrades to a direct store read.
type Service struct {
	source Source
	cache  *Cache
	logger *slog.Logger
}

type Option func(*Service)

func WithCache(cache *Cache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the progress snapshot for a shipment as seen by a role's
// stage.
func (s *Service) Get(ctx context.Context, hash domain.ShipmentHash, role domain.Role) (Snapshot, error) {
	stage := StageFor(role)

	if s.cache != nil {
		snap, hit, err := s.cache.Get(ctx, hash, stage)
		if err != nil {
			s.logger.WarnContext(ctx, "progress cache read failed", "shipment_hash", hash, "error", err)
		} else if hit {
			return snap, nil
		}
	}

	snap, err := s.source.Load(ctx, hash, stage)
	if err != nil {
		return Snapshot{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, hash, stage, snap); err != nil {
			s.logger.WarnContext(ctx, "progress cache write failed", "shipment_hash", hash, "error", err)
		}
	}
	return snap, nil
}
