package cache

import (
	"fmt"
	"time"

	"github.com/bizdocs/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// QRCodeCacheFactory creates QR code caches based on configuration
type QRCodeCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// QRCodeCacheFactoryOption is a functional option for configuring the factory
type QRCodeCacheFactoryOption func(*QRCodeCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) QRCodeCacheFactoryOption {
	return func(f *QRCodeCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) QRCodeCacheFactoryOption {
	return func(f *QRCodeCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewQRCodeCacheFactory creates a new factory
func NewQRCodeCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...QRCodeCacheFactoryOption) *QRCodeCacheFactory {
	f := &QRCodeCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache returns a Redis cache, or an in-memory one when Redis is
// unreachable and fallback is allowed
func (f *QRCodeCacheFactory) CreateCache() (QRCodeCache, error) {
	c, err := NewRedisQRCodeCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl)
	if err == nil {
		f.logger.Info("using Redis QR code cache")
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for QR code cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory QR code cache", zap.Error(err))
	return NewInMemoryQRCodeCache(f.ttl), nil
}
