package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
	"github.com/kislikjeka/walletledger/pkg/logger"
)

const (
	// DefaultTTL bounds how long an unused bucket stays in Redis
	DefaultTTL = 10 * time.Minute

	// KeyPrefix is the prefix for wallet item cache keys
	KeyPrefix = "walletitems:"
)

var _ walletitem.QueryCache = (*ItemCache)(nil)

// ItemCache is a Redis-backed walletitem.QueryCache.
//
// Each wallet has an epoch counter bumped with INCR on invalidation. Buckets
// are stored under a key that embeds the epoch read before computing, so a
// bucket computed before a write lands under an epoch nobody reads anymore.
type ItemCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewItemCache creates a new Redis item cache. A non-positive ttl selects DefaultTTL.
func NewItemCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *ItemCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ItemCache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "redis_item_cache"),
	}
}

func epochKey(walletID int64) string {
	return fmt.Sprintf("%s%d:epoch", KeyPrefix, walletID)
}

func bucketKey(walletID int64, epoch int64, t walletitem.Type) string {
	return fmt.Sprintf("%s%d:%d:%s", KeyPrefix, walletID, epoch, t)
}

// GetOrCompute implements walletitem.QueryCache
func (c *ItemCache) GetOrCompute(ctx context.Context, walletID int64, t walletitem.Type, compute walletitem.ComputeFunc) ([]*walletitem.WalletItem, error) {
	epoch, err := c.epoch(ctx, walletID)
	if err != nil {
		return nil, err
	}

	key := bucketKey(walletID, epoch, t)
	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []*walletitem.WalletItem
		if err := json.Unmarshal(val, &items); err == nil {
			c.logger.Debug("cache hit", "wallet_id", walletID, "type", t, "epoch", epoch)
			return items, nil
		}
		c.logger.Warn("discarding unreadable cache entry", "key", key)
	case errors.Is(err, redis.Nil):
		c.logger.Debug("cache miss", "wallet_id", walletID, "type", t, "epoch", epoch)
	default:
		c.logger.Error("cache error", "operation", "get", "wallet_id", walletID, "error", err)
		return nil, fmt.Errorf("failed to get cached items: %w", err)
	}

	items, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal items: %w", err)
	}

	// A failed store only costs a recompute later.
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache error", "operation", "set", "wallet_id", walletID, "error", err)
	}

	return items, nil
}

// InvalidateWallet implements walletitem.QueryCache
func (c *ItemCache) InvalidateWallet(ctx context.Context, walletID int64) error {
	next, err := c.client.Incr(ctx, epochKey(walletID)).Result()
	if err != nil {
		c.logger.Error("cache error", "operation", "invalidate", "wallet_id", walletID, "error", err)
		return fmt.Errorf("failed to bump wallet epoch: %w", err)
	}

	previous := make([]string, 0, len(walletitem.Types()))
	for _, t := range walletitem.Types() {
		previous = append(previous, bucketKey(walletID, next-1, t))
	}

	if err := c.client.Del(ctx, previous...).Err(); err != nil {
		// old buckets are unreachable once the epoch moved; TTL reclaims them
		c.logger.Warn("cache error", "operation", "evict", "wallet_id", walletID, "error", err)
	}

	c.logger.Debug("cache invalidated", "wallet_id", walletID, "epoch", next)
	return nil
}

// Epoch returns the current epoch of a wallet
func (c *ItemCache) Epoch(ctx context.Context, walletID int64) (int64, error) {
	return c.epoch(ctx, walletID)
}

func (c *ItemCache) epoch(ctx context.Context, walletID int64) (int64, error) {
	epoch, err := c.client.Get(ctx, epochKey(walletID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "epoch", "wallet_id", walletID, "error", err)
		return 0, fmt.Errorf("failed to read wallet epoch: %w", err)
	}
	return epoch, nil
}
