// Package redis stores finished translations in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/transly/internal/domain"
	"github.com/davidbz/transly/internal/observability"
)

// Config contains Redis connection settings. An empty Addr disables caching.
type Config struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"          envDefault:"0"`
	TTL      int    `env:"CACHE_TTL_SECONDS" envDefault:"3600"`
}

// Enabled reports whether a Redis address is configured.
func (c Config) Enabled() bool {
	return c.Addr != ""
}

// TTLDuration returns the entry lifetime.
func (c Config) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// NewClient creates a Redis client from cfg.
func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// ResultCache implements domain.ResultCache on plain string keys.
type ResultCache struct {
	client *redis.Client
	prefix string
}

// NewResultCache creates a new Redis result cache. Keys are stored under prefix.
func NewResultCache(client *redis.Client, prefix string) *ResultCache {
	return &ResultCache{
		client: client,
		prefix: prefix,
	}
}

// Get returns domain.ErrCacheMiss when key is absent.
func (c *ResultCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	observability.FromContext(ctx).Debug("cache entry found", observability.String("key", key))
	return value, nil
}

// Set stores value under key; a zero ttl keeps the entry forever.
func (c *ResultCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	observability.FromContext(ctx).Debug("cache entry stored",
		observability.String("key", key),
		observability.Duration("ttl", ttl))
	return nil
}

// Ping checks the connection.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
