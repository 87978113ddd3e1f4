package cache

import (
	"go.uber.org/zap"

	"github.com/emgea/siscalculo/internal/domain/indices"
	"github.com/emgea/siscalculo/internal/infrastructure/config"
)

// NewFactorCache creates the factor cache per configuration: Redis when
// enabled and reachable, otherwise a process-local cache. Startup never
// fails on a missing Redis; the degradation is logged and service continues.
func NewFactorCache(cfg config.RedisConfig, logger *zap.Logger) indices.FactorCache {
	if !cfg.Enabled {
		return NewInMemoryFactorCache()
	}

	redisCache, err := NewRedisFactorCache(RedisConfig{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}, logger)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory factor cache", zap.Error(err))
		return NewInMemoryFactorCache()
	}

	logger.Info("using Redis factor cache", zap.String("addr", cfg.Addr()))
	return redisCache
}
