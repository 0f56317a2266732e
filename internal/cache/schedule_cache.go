// Package cache keeps the public schedule listing in Redis.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultPrefix = "boat:schedules"

// ScheduleCache stores available-schedule listings per filter. Every write to
// schedules or seats bumps a generation counter, which orphans old entries
// until their TTL expires. A nil client disables the cache.
type ScheduleCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

func NewScheduleCache(rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *ScheduleCache {
	return &ScheduleCache{rdb: rdb, ttl: ttl, prefix: defaultPrefix, logger: logger}
}

func (c *ScheduleCache) enabled() bool {
	return c != nil && c.rdb != nil && c.ttl > 0
}

// LoadFunc reads the listing from the datastore on a cache miss.
type LoadFunc func(ctx context.Context) ([]*model.Schedule, error)

// GetOrLoad returns the cached listing for filter, or loads and stores it.
// The entry is written under the generation read before load ran, so an
// Invalidate during load leaves the fresh write unreachable.
func (c *ScheduleCache) GetOrLoad(ctx context.Context, filter model.ScheduleFilter, load LoadFunc) ([]*model.Schedule, error) {
	if !c.enabled() {
		return load(ctx)
	}

	key, err := c.key(ctx, filter)
	if err != nil {
		c.logger.Warn("Schedule cache key failed", zap.Error(err))
		return load(ctx)
	}

	if schedules, ok := c.read(ctx, key); ok {
		return schedules, nil
	}

	schedules, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.write(ctx, key, schedules)
	return schedules, nil
}

func (c *ScheduleCache) read(ctx context.Context, key string) ([]*model.Schedule, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Schedule cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var schedules []*model.Schedule
	if err := json.Unmarshal(raw, &schedules); err != nil {
		c.logger.Warn("Schedule cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return schedules, true
}

func (c *ScheduleCache) write(ctx context.Context, key string, schedules []*model.Schedule) {
	payload, err := json.Marshal(schedules)
	if err != nil {
		c.logger.Warn("Schedule cache encode failed", zap.Error(err))
		return
	}

	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Schedule cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached listing.
func (c *ScheduleCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Incr(ctx, c.generationKey()).Err(); err != nil {
		c.logger.Warn("Schedule cache invalidation failed", zap.Error(err))
	}
}

func (c *ScheduleCache) key(ctx context.Context, filter model.ScheduleFilter) (string, error) {
	generation, err := c.rdb.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read generation: %w", err)
	}
	return entryKey(c.prefix, generation, filter), nil
}

func (c *ScheduleCache) generationKey() string {
	return c.prefix + ":gen"
}

func entryKey(prefix string, generation int64, filter model.ScheduleFilter) string {
	raw, _ := json.Marshal(filter)
	sum := sha1.Sum(raw)
	return fmt.Sprintf("%s:%d:%x", prefix, generation, sum[:])
}
