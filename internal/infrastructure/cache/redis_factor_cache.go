package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	factorKeyPrefix = "siscalculo:factor:"
	factorTTL       = 24 * time.Hour
)

// RedisFactorCache memoises compounded index factors in Redis so concurrent
// calculation runs across instances share lookups. Misses and transport
// errors are both reported as a miss; the factor service recomputes.
type RedisFactorCache struct {
	client *redis.Client
	logger *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisFactorCache creates a Redis-backed factor cache, verifying the
// connection up front.
func NewRedisFactorCache(cfg RedisConfig, logger *zap.Logger) (*RedisFactorCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisFactorCache{client: client, logger: logger}, nil
}

// Get implements indices.FactorCache.
func (c *RedisFactorCache) Get(ctx context.Context, key string) (decimal.Decimal, bool) {
	raw, err := c.client.Get(ctx, factorKeyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("factor cache read failed", zap.String("key", key), zap.Error(err))
		}
		return decimal.Decimal{}, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		c.logger.Warn("factor cache holds garbage", zap.String("key", key), zap.String("value", raw))
		return decimal.Decimal{}, false
	}
	return rate, true
}

// Set implements indices.FactorCache. Failures are logged, never surfaced:
// the cache is an optimisation, not a dependency.
func (c *RedisFactorCache) Set(ctx context.Context, key string, rate decimal.Decimal) {
	if err := c.client.Set(ctx, factorKeyPrefix+key, rate.String(), factorTTL).Err(); err != nil {
		c.logger.Warn("factor cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Close releases the underlying client.
func (c *RedisFactorCache) Close() error {
	return c.client.Close()
}
