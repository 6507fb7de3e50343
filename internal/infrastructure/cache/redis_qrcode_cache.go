package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultQRCodeKeyPrefix = "bizdocs:qrcode:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisQRCodeCache implements QRCodeCache on Redis so that every API instance
// shares rendered QR images
type RedisQRCodeCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisQRCodeCache connects to Redis and verifies the connection
func NewRedisQRCodeCache(cfg RedisConfig, ttl time.Duration) (*RedisQRCodeCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisQRCodeCacheWithClient(client, "", ttl), nil
}

// NewRedisQRCodeCacheWithClient creates a cache on an existing client
func NewRedisQRCodeCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisQRCodeCache {
	if keyPrefix == "" {
		keyPrefix = defaultQRCodeKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultQRCodeTTL
	}
	return &RedisQRCodeCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached PNG for key
func (c *RedisQRCodeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read QR code from cache: %w", err)
	}
	return val, true, nil
}

// Set stores the PNG for key with the cache TTL
func (c *RedisQRCodeCache) Set(ctx context.Context, key string, png []byte) error {
	if err := c.client.Set(ctx, c.keyPrefix+key, png, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write QR code to cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisQRCodeCache) Close() error {
	return c.client.Close()
}

// Ping checks the Redis connection
func (c *RedisQRCodeCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ QRCodeCache = (*RedisQRCodeCache)(nil)
