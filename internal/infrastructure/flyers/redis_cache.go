package flyers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/planea/aiserver/internal/ports/outbound"
)

// RedisCache decorates a DealSource with a shared Redis cache, so multiple
// instances fetch each flyer once. Cache errors degrade to the upstream.
type RedisCache struct {
	next   outbound.DealSource
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache wraps next with a Redis-backed TTL cache.
func NewRedisCache(next outbound.DealSource, client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl == 0 {
		ttl = 6 * time.Hour
	}
	return &RedisCache{next: next, client: client, ttl: ttl, logger: logger}
}

func dealKey(store, postalCode string) string {
	return "planea:deals:" + store + ":" + postalCode
}

// GetWeeklyDeals serves from Redis when present, otherwise refreshes and
// stores.
func (c *RedisCache) GetWeeklyDeals(ctx context.Context, store, postalCode string) ([]outbound.Deal, error) {
	key := dealKey(store, postalCode)

	cached, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var deals []outbound.Deal
		if jsonErr := json.Unmarshal(cached, &deals); jsonErr == nil {
			return deals, nil
		}
		// Corrupt entry: drop it and refetch.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("deal cache read failed", zap.Error(err))
	}

	deals, err := c.next.GetWeeklyDeals(ctx, store, postalCode)
	if err != nil {
		return nil, err
	}

	if encoded, jsonErr := json.Marshal(deals); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil {
			c.logger.Warn("deal cache write failed", zap.Error(setErr))
		}
	}
	return deals, nil
}
