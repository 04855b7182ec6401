package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReceiptCache implements ports.ReceiptCache.
type ReceiptCache struct {
	client *goredis.Client
	prefix string
}

// NewReceiptCache creates a new Redis-backed receipt cache.
func NewReceiptCache(client *goredis.Client) *ReceiptCache {
	return &ReceiptCache{
		client: client,
		prefix: "receipt:",
	}
}

// Seen reports whether a provider receipt id has been recorded. The
// payment table's unique receipt constraint stays authoritative; this
// only short-circuits the common duplicate webhook.
func (c *ReceiptCache) Seen(ctx context.Context, receiptID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+receiptID).Result()
	if err != nil {
		return false, fmt.Errorf("redis receipt check: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records a provider receipt id for ttl. Called once the
// payment row is persisted; marking earlier would turn a failed insert
// into a silently dropped payment when the provider retries.
func (c *ReceiptCache) MarkSeen(ctx context.Context, receiptID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+receiptID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis receipt mark: %w", err)
	}
	return nil
}
