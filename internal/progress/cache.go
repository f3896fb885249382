package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cargotrace/internal/lifecycle"
	"cargotrace/pkg/domain"
)

// Cache stores progress snapshots in Redis with a TTL so the progress
// endpoint does not hit the store on every poll from every device.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func cacheKey(hash domain.ShipmentHash, stage lifecycle.ContainerStatus) string {
	return fmt.Sprintf("progress:%s:%s", hash, stage)
}

// Get returns the cached snapshot, with false on miss. Redis failures are
// returned so the caller can degrade to the store.
func (c *Cache) Get(ctx context.Context, hash domain.ShipmentHash, stage lifecycle.ContainerStatus) (Snapshot, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(hash, stage)).Result()
	if err == redis.Nil {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("get progress cache: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode progress cache: %w", err)
	}
	return snap, true, nil
}

// Set stores the snapshot under the shipment/stage key.
func (c *Cache) Set(ctx context.Context, hash domain.ShipmentHash, stage lifecycle.ContainerStatus, snap Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode progress cache: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(hash, stage), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set progress cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached snapshots for a shipment across all stages.
func (c *Cache) Invalidate(ctx context.Context, hash domain.ShipmentHash) error {
	stages := []lifecycle.ContainerStatus{
		lifecycle.ContainerInTransit,
		lifecycle.ContainerAtWarehouse,
		lifecycle.ContainerDelivered,
	}
	keys := make([]string, len(stages))
	for i, stage := range stages {
		keys[i] = cacheKey(hash, stage)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate progress cache: %w", err)
	}
	return nil
}
