// Package cache provides Redis read-through caches for numbering lookups.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"numbering/internal/core/id"
	"numbering/internal/domain/numbering"
	"numbering/pkg/logger"
)

const defaultOrgCodeTTL = 10 * time.Minute

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

var _ numbering.OrgDirectory = (*OrgCodeCache)(nil)

// OrgCodeCache wraps an OrgDirectory with a Redis read-through cache.
// Redis failures degrade to the underlying directory; only its errors are
// returned to the caller. Misses are not cached.
type OrgCodeCache struct {
	client *redis.Client
	source numbering.OrgDirectory
	ttl    time.Duration
	prefix string
}

// OrgCodeCacheOption configures an OrgCodeCache.
type OrgCodeCacheOption func(*OrgCodeCache)

// WithTTL sets how long a cached code lives.
func WithTTL(ttl time.Duration) OrgCodeCacheOption {
	return func(c *OrgCodeCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces the cache keys.
func WithKeyPrefix(prefix string) OrgCodeCacheOption {
	return func(c *OrgCodeCache) {
		c.prefix = prefix
	}
}

// NewOrgCodeCache creates the cache. The caller keeps ownership of client.
func NewOrgCodeCache(client *redis.Client, source numbering.OrgDirectory, opts ...OrgCodeCacheOption) *OrgCodeCache {
	c := &OrgCodeCache{
		client: client,
		source: source,
		ttl:    defaultOrgCodeTTL,
		prefix: "numbering",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OrgCodeCache) key(orgID id.ID) string {
	return fmt.Sprintf("%s:org_code:%s", c.prefix, orgID)
}

// CodeByID implements numbering.OrgDirectory.
func (c *OrgCodeCache) CodeByID(ctx context.Context, orgID id.ID) (string, error) {
	key := c.key(orgID)

	code, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil && code != "":
		return code, nil
	case err != nil && !errors.Is(err, redis.Nil):
		logger.Warn(ctx, "org code cache read failed", logger.KeyOrgID, orgID, "error", err)
	}

	code, err = c.source.CodeByID(ctx, orgID)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, code, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "org code cache write failed", logger.KeyOrgID, orgID, "error", err)
	}
	return code, nil
}

// Invalidate drops the cached code, e.g. after the org catalog renames it.
func (c *OrgCodeCache) Invalidate(ctx context.Context, orgID id.ID) error {
	if err := c.client.Del(ctx, c.key(orgID)).Err(); err != nil {
		return fmt.Errorf("invalidate org code: %w", err)
	}
	return nil
}
