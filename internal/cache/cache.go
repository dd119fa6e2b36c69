// README: Read-through spatial cache for service-area and vendor lookups.
//
// All backend failures are swallowed: a broken cache degrades every
// operation to a miss or a dropped write, never to a caller-visible error.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quickcart/internal/types"
)

const (
	areaPrefix   = "spatial:area:"
	vendorPrefix = "spatial:vendors:"

	areaTTL   = 300 * time.Second
	vendorTTL = 120 * time.Second
)

// Backend is the minimal key/value contract the cache needs. A miss is
// reported via the bool, not an error.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

type SpatialCache struct {
	backend Backend
	log     *slog.Logger
}

func New(backend Backend, log *slog.Logger) *SpatialCache {
	if log == nil {
		log = slog.Default()
	}
	return &SpatialCache{backend: backend, log: log}
}

func (c *SpatialCache) GetArea(ctx context.Context, p types.Point) (string, bool) {
	return c.get(ctx, areaKey(p))
}

func (c *SpatialCache) SetArea(ctx context.Context, p types.Point, payload string) {
	c.set(ctx, areaKey(p), payload, areaTTL)
}

func (c *SpatialCache) GetVendors(ctx context.Context, p types.Point, categoryID string, maxKm float64) (string, bool) {
	return c.get(ctx, vendorsKey(p, categoryID, maxKm))
}

func (c *SpatialCache) SetVendors(ctx context.Context, p types.Point, categoryID string, maxKm float64, payload string) {
	c.set(ctx, vendorsKey(p, categoryID, maxKm), payload, vendorTTL)
}

// InvalidateAreas clears every cached resolution. Vendor keys go too:
// vendor discovery depends on area membership.
func (c *SpatialCache) InvalidateAreas(ctx context.Context) {
	if err := c.backend.DeleteByPrefix(ctx, areaPrefix); err != nil {
		c.log.Warn("cache invalidate failed", "prefix", areaPrefix, "err", err)
	}
	if err := c.backend.DeleteByPrefix(ctx, vendorPrefix); err != nil {
		c.log.Warn("cache invalidate failed", "prefix", vendorPrefix, "err", err)
	}
}

func (c *SpatialCache) Close() error {
	return c.backend.Close()
}

func (c *SpatialCache) get(ctx context.Context, key string) (string, bool) {
	val, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache get failed", "key", key, "err", err)
		return "", false
	}
	return val, ok
}

func (c *SpatialCache) set(ctx context.Context, key, val string, ttl time.Duration) {
	if err := c.backend.Set(ctx, key, val, ttl); err != nil {
		c.log.Warn("cache set failed", "key", key, "err", err)
	}
}

// Keys round coordinates to 6 decimal places (~0.1 m) so nearby requests
// share entries without crossing meaningfully different positions.
func areaKey(p types.Point) string {
	return fmt.Sprintf("%s%.6f:%.6f", areaPrefix, p.Lat, p.Lng)
}

func vendorsKey(p types.Point, categoryID string, maxKm float64) string {
	if categoryID == "" {
		categoryID = "all"
	}
	// maxKm is keyed at full precision: the filter runs at the exact value,
	// so the key must too or near-miss radii would share entries.
	return fmt.Sprintf("%s%.6f:%.6f:cat=%s:max=%g", vendorPrefix, p.Lat, p.Lng, categoryID, maxKm)
}
