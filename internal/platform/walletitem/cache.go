package walletitem

import (
	"context"
	"sync"

	"github.com/kislikjeka/walletledger/pkg/logger"
)

var _ QueryCache = (*ItemCache)(nil)

// ItemCache is an in-process QueryCache.
//
// Every wallet carries an epoch that InvalidateWallet bumps. A computed bucket
// is stored only if the wallet epoch did not move while it was computed, so a
// slow read that raced with a write can never repopulate the cache with data
// older than that write.
//
// Epochs are never pruned, so the map holds one counter per wallet ever
// invalidated. A missing epoch reads as zero, which is only sound while the
// wallet has never been invalidated: dropping a counter would let a read that
// started before the drop store its result as current.
type ItemCache struct {
	mu      sync.RWMutex
	epochs  map[int64]uint64
	buckets map[int64]map[Type]cachedBucket
	logger  *logger.Logger
}

type cachedBucket struct {
	epoch uint64
	items []WalletItem
}

// NewItemCache creates an empty in-process cache
func NewItemCache(log *logger.Logger) *ItemCache {
	return &ItemCache{
		epochs:  make(map[int64]uint64),
		buckets: make(map[int64]map[Type]cachedBucket),
		logger:  log.WithField("component", "item_cache"),
	}
}

// GetOrCompute implements QueryCache
func (c *ItemCache) GetOrCompute(ctx context.Context, walletID int64, t Type, compute ComputeFunc) ([]*WalletItem, error) {
	c.mu.RLock()
	epoch := c.epochs[walletID]
	bucket, ok := c.buckets[walletID][t]
	c.mu.RUnlock()

	if ok && bucket.epoch == epoch {
		c.logger.Debug("cache hit", "wallet_id", walletID, "type", t)
		return expand(bucket.items), nil
	}

	c.logger.Debug("cache miss", "wallet_id", walletID, "type", t)
	items, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.epochs[walletID] == epoch {
		byType, exists := c.buckets[walletID]
		if !exists {
			byType = make(map[Type]cachedBucket)
			c.buckets[walletID] = byType
		}
		byType[t] = cachedBucket{epoch: epoch, items: flatten(items)}
	}
	c.mu.Unlock()

	return items, nil
}

// InvalidateWallet implements QueryCache
func (c *ItemCache) InvalidateWallet(_ context.Context, walletID int64) error {
	c.mu.Lock()
	c.epochs[walletID]++
	delete(c.buckets, walletID)
	c.mu.Unlock()

	c.logger.Debug("cache invalidated", "wallet_id", walletID)
	return nil
}

// Epoch returns the current epoch of a wallet
func (c *ItemCache) Epoch(walletID int64) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epochs[walletID]
}

func flatten(items []*WalletItem) []WalletItem {
	out := make([]WalletItem, len(items))
	for i, it := range items {
		out[i] = *it
	}
	return out
}

func expand(items []WalletItem) []*WalletItem {
	out := make([]*WalletItem, len(items))
	for i := range items {
		it := items[i]
		out[i] = &it
	}
	return out
}
