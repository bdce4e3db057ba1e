// Package cache provides the Redis read-through cache for committed receipts.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kasirku/internal/core/id"
	"kasirku/internal/domain/sales"
	"kasirku/pkg/logger"
)

// DefaultReceiptTTL is used when no TTL is configured.
const DefaultReceiptTTL = 10 * time.Minute

const receiptKeyPrefix = "kasirku:receipt:"

// ReceiptCache implements sales.OrderCache on Redis.
// Cache failures are logged and treated as misses.
type ReceiptCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Compile-time check that ReceiptCache implements sales.OrderCache.
var _ sales.OrderCache = (*ReceiptCache)(nil)

// NewReceiptCache creates a receipt cache.
func NewReceiptCache(client *redis.Client, ttl time.Duration) *ReceiptCache {
	if ttl <= 0 {
		ttl = DefaultReceiptTTL
	}
	return &ReceiptCache{client: client, ttl: ttl}
}

// ReceiptKey returns the cache key of an order.
func ReceiptKey(storeID, orderID id.ID) string {
	return fmt.Sprintf("%s%s:%s", receiptKeyPrefix, storeID, orderID)
}

// Get implements sales.OrderCache.
func (c *ReceiptCache) Get(ctx context.Context, storeID, orderID id.ID) (*sales.Order, bool) {
	data, err := c.client.Get(ctx, ReceiptKey(storeID, orderID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn(ctx, "receipt cache get failed", "order_id", orderID, "error", err)
		}
		return nil, false
	}

	var o sales.Order
	if err := json.Unmarshal(data, &o); err != nil {
		logger.Warn(ctx, "receipt cache entry corrupt", "order_id", orderID, "error", err)
		return nil, false
	}
	return &o, true
}

// Set implements sales.OrderCache.
func (c *ReceiptCache) Set(ctx context.Context, o *sales.Order) {
	data, err := json.Marshal(o)
	if err != nil {
		logger.Warn(ctx, "receipt cache encode failed", "order_id", o.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, ReceiptKey(o.StoreID, o.ID), data, c.ttl).Err(); err != nil {
		logger.Warn(ctx, "receipt cache set failed", "order_id", o.ID, "error", err)
	}
}

// Ping checks connectivity for the readiness probe.
func (c *ReceiptCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
