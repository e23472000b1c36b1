package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ChinmayGopal931/delta-neutral/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache for exposure reads. Writes go to the primary store and invalidate
// the cache; history queries pass through uncached.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (s *CachedStore) GetExposure(ctx context.Context, poolID string) (decimal.Decimal, error) {
	// Try cache.
	val, err := s.rdb.Get(ctx, exposureKey(poolID)).Result()
	if err == nil {
		if q, perr := decimal.NewFromString(val); perr == nil {
			return q, nil
		}
	}

	// Cache miss: read from primary.
	q, err := s.primary.GetExposure(ctx, poolID)
	if err != nil {
		return decimal.Zero, err
	}

	s.rdb.Set(ctx, exposureKey(poolID), q.String(), s.ttl)
	return q, nil
}

func (s *CachedStore) SetExposure(ctx context.Context, poolID string, quantity decimal.Decimal) error {
	if err := s.primary.SetExposure(ctx, poolID, quantity); err != nil {
		return err
	}
	// Invalidate; next read re-populates.
	s.rdb.Del(ctx, exposureKey(poolID))
	return nil
}

// --- Passthrough (not cached) ---

func (s *CachedStore) ListExposures(ctx context.Context) ([]model.Exposure, error) {
	return s.primary.ListExposures(ctx)
}

func (s *CachedStore) InsertRebalanceRecord(ctx context.Context, rec *model.RebalanceRecord) error {
	return s.primary.InsertRebalanceRecord(ctx, rec)
}

func (s *CachedStore) GetRebalanceRecordsByPool(ctx context.Context, poolID string) ([]model.RebalanceRecord, error) {
	return s.primary.GetRebalanceRecordsByPool(ctx, poolID)
}

func exposureKey(poolID string) string { return fmt.Sprintf("exposure:%s", poolID) }
