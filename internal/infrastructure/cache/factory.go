package cache

import (
	"fmt"

	"github.com/catalogsync/backend/internal/application/report"
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// dialRedis is swapped in tests
var dialRedis = NewRedisReportCache

type openOptions struct {
	log         *zap.Logger
	memFallback bool
}

// OpenOption configures Open
type OpenOption func(*openOptions)

// WithLogger logs which cache Open picked
func WithLogger(log *zap.Logger) OpenOption {
	return func(o *openOptions) { o.log = log }
}

// RequireRedis makes Open fail instead of falling back to memory
func RequireRedis() OpenOption {
	return func(o *openOptions) { o.memFallback = false }
}

// Open returns a Redis report cache, or an in-memory one when Redis is
// unreachable. In-memory caches are per process: a delete on one instance
// leaves the others serving stale reports until their TTL runs out.
func Open(cfg config.RedisConfig, opts ...OpenOption) (report.Cache, error) {
	o := openOptions{log: zap.NewNop(), memFallback: true}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := dialRedis(RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	switch {
	case err == nil:
		o.log.Info("Report cache backed by Redis", zap.String("addr", cfg.Addr()))
		return c, nil
	case !o.memFallback:
		return nil, fmt.Errorf("redis report cache unavailable: %w", err)
	}
	o.log.Warn("Redis unreachable, caching reports in memory", zap.Error(err))
	return NewInMemoryReportCache(), nil
}
