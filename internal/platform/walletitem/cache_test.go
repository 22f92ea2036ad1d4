package walletitem

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletledger/pkg/logger"
)

func countingCompute(calls *atomic.Int32, items ...*WalletItem) ComputeFunc {
	return func(context.Context) ([]*WalletItem, error) {
		calls.Add(1)
		return items, nil
	}
}

func TestItemCache_HitAfterMiss(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(logger.NewNop())
	var calls atomic.Int32
	item := &WalletItem{ID: 1, WalletID: 1, Type: TypeCredit, Value: decimal.NewFromInt(10)}

	first, err := cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls, item))
	require.NoError(t, err)
	second, err := cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls, item))
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first, second)
}

func TestItemCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(logger.NewNop())
	var calls atomic.Int32
	item := &WalletItem{ID: 1, WalletID: 1, Type: TypeCredit, Description: "original"}

	_, err := cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls, item))
	require.NoError(t, err)

	got, err := cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls, item))
	require.NoError(t, err)
	got[0].Description = "mutated"

	again, err := cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls, item))
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Description)
}

func TestItemCache_BucketsAreKeyedByWalletAndType(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(logger.NewNop())
	var calls atomic.Int32

	_, _ = cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls))
	_, _ = cache.GetOrCompute(ctx, 1, TypeDebit, countingCompute(&calls))
	_, _ = cache.GetOrCompute(ctx, 2, TypeCredit, countingCompute(&calls))

	assert.Equal(t, int32(3), calls.Load())
}

func TestItemCache_InvalidateDropsAllTypesOfWallet(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(logger.NewNop())
	var calls atomic.Int32

	_, _ = cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls))
	_, _ = cache.GetOrCompute(ctx, 1, TypeDebit, countingCompute(&calls))
	_, _ = cache.GetOrCompute(ctx, 2, TypeCredit, countingCompute(&calls))
	require.Equal(t, int32(3), calls.Load())

	require.NoError(t, cache.InvalidateWallet(ctx, 1))
	assert.Equal(t, uint64(1), cache.Epoch(1))

	_, _ = cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls))
	_, _ = cache.GetOrCompute(ctx, 1, TypeDebit, countingCompute(&calls))
	_, _ = cache.GetOrCompute(ctx, 2, TypeCredit, countingCompute(&calls))

	assert.Equal(t, int32(5), calls.Load(), "wallet 2 must still be cached")
}

func TestItemCache_StaleComputeIsNotStored(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(logger.NewNop())
	var calls atomic.Int32

	stale := func(ctx context.Context) ([]*WalletItem, error) {
		calls.Add(1)
		// a write lands while the read is in flight
		require.NoError(t, cache.InvalidateWallet(ctx, 1))
		return []*WalletItem{{ID: 1, Description: "stale"}}, nil
	}

	got, err := cache.GetOrCompute(ctx, 1, TypeCredit, stale)
	require.NoError(t, err)
	assert.Equal(t, "stale", got[0].Description)

	fresh := &WalletItem{ID: 1, Description: "fresh"}
	got, err = cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls, fresh))
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "fresh", got[0].Description)
}

func TestItemCache_EpochOutlivesBuckets(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(logger.NewNop())
	var calls atomic.Int32

	require.NoError(t, cache.InvalidateWallet(ctx, 1))
	require.NoError(t, cache.InvalidateWallet(ctx, 1))
	assert.Equal(t, uint64(2), cache.Epoch(1))

	// a read that began before the wallet had any bucket
	var inFlight []*WalletItem
	_, err := cache.GetOrCompute(ctx, 1, TypeDebit, func(ctx context.Context) ([]*WalletItem, error) {
		require.NoError(t, cache.InvalidateWallet(ctx, 1))
		return inFlight, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), cache.Epoch(1))

	_, err = cache.GetOrCompute(ctx, 1, TypeDebit, countingCompute(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestItemCache_ComputeErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(logger.NewNop())
	var calls atomic.Int32

	_, err := cache.GetOrCompute(ctx, 1, TypeCredit, func(context.Context) ([]*WalletItem, error) {
		calls.Add(1)
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = cache.GetOrCompute(ctx, 1, TypeCredit, countingCompute(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestItemCache_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	cache := NewItemCache(logger.NewNop())
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(wallet int64) {
			defer wg.Done()
			_, err := cache.GetOrCompute(ctx, wallet%3+1, TypeCredit, countingCompute(&calls))
			assert.NoError(t, err)
		}(int64(i))
		go func(wallet int64) {
			defer wg.Done()
			assert.NoError(t, cache.InvalidateWallet(ctx, wallet%3+1))
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, uint64(50), cache.Epoch(1)+cache.Epoch(2)+cache.Epoch(3))
}
