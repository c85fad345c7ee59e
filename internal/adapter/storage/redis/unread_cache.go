package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// UnreadCache implements ports.UnreadCache using Redis. It caches
// per-account unread notification counts so dashboard polling does not
// hit PostgreSQL on every request.
type UnreadCache struct {
	client *goredis.Client
	prefix string
}

// NewUnreadCache creates a new Redis-backed unread counter cache.
func NewUnreadCache(client *goredis.Client) *UnreadCache {
	return &UnreadCache{
		client: client,
		prefix: "unread:",
	}
}

// Get retrieves a cached unread count. The second return value is false
// on cache miss.
func (c *UnreadCache) Get(ctx context.Context, accountID uuid.UUID) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+accountID.String()).Int64()
	if err != nil {
		if err == goredis.Nil {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redis unread get: %w", err)
	}
	return val, true, nil
}

// Set stores an unread count with TTL.
func (c *UnreadCache) Set(ctx context.Context, accountID uuid.UUID, count int64, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+accountID.String(), count, ttl).Err(); err != nil {
		return fmt.Errorf("redis unread set: %w", err)
	}
	return nil
}

// Invalidate drops the cached count after a notification write.
func (c *UnreadCache) Invalidate(ctx context.Context, accountID uuid.UUID) error {
	if err := c.client.Del(ctx, c.prefix+accountID.String()).Err(); err != nil {
		return fmt.Errorf("redis unread del: %w", err)
	}
	return nil
}
