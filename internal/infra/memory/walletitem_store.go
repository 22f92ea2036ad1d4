// Package memory provides in-process implementations of the ledger ports.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
)

var _ walletitem.Repository = (*WalletItemStore)(nil)

// WalletItemStore is a walletitem.Repository held in memory
type WalletItemStore struct {
	mu      sync.RWMutex
	nextID  int64
	items   map[int64]walletitem.WalletItem
	wallets walletitem.WalletLookup
}

// NewWalletItemStore creates an empty store. wallets decides which wallet ids are accepted.
func NewWalletItemStore(wallets walletitem.WalletLookup) *WalletItemStore {
	return &WalletItemStore{
		items:   make(map[int64]walletitem.WalletItem),
		wallets: wallets,
	}
}

// Create implements walletitem.Repository
func (s *WalletItemStore) Create(ctx context.Context, item *walletitem.WalletItem) error {
	ok, err := s.wallets.Exists(ctx, item.WalletID)
	if err != nil {
		return walletitem.StorageError("lookup wallet", err)
	}
	if !ok {
		return walletitem.ErrWalletNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	item.ID = s.nextID
	s.items[item.ID] = *item
	return nil
}

// GetByID implements walletitem.Repository
func (s *WalletItemStore) GetByID(_ context.Context, id int64) (*walletitem.WalletItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, walletitem.ErrItemNotFound
	}
	return &item, nil
}

// Update implements walletitem.Repository
func (s *WalletItemStore) Update(_ context.Context, item *walletitem.WalletItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[item.ID]
	if !ok {
		return walletitem.ErrItemNotFound
	}

	existing.Date = item.Date
	existing.Type = item.Type
	existing.Description = item.Description
	existing.Value = item.Value
	s.items[item.ID] = existing
	return nil
}

// Delete implements walletitem.Repository
func (s *WalletItemStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return walletitem.ErrItemNotFound
	}
	delete(s.items, id)
	return nil
}

// FindByWalletAndDateRange implements walletitem.Repository
func (s *WalletItemStore) FindByWalletAndDateRange(_ context.Context, walletID int64, start, end time.Time, page, pageSize int) ([]*walletitem.WalletItem, int64, error) {
	matches := s.filter(func(i *walletitem.WalletItem) bool {
		return i.WalletID == walletID && !i.Date.Before(start) && !i.Date.After(end)
	})

	total := int64(len(matches))
	if page < 0 || pageSize <= 0 || page >= (len(matches)+pageSize-1)/pageSize {
		return []*walletitem.WalletItem{}, total, nil
	}

	offset := page * pageSize
	return matches[offset:min(offset+pageSize, len(matches))], total, nil
}

// FindByWalletAndType implements walletitem.Repository
func (s *WalletItemStore) FindByWalletAndType(_ context.Context, walletID int64, t walletitem.Type) ([]*walletitem.WalletItem, error) {
	return s.filter(func(i *walletitem.WalletItem) bool {
		return i.WalletID == walletID && i.Type == t
	}), nil
}

// SumValue implements walletitem.Repository
func (s *WalletItemStore) SumValue(_ context.Context, walletID int64) (decimal.NullDecimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sum   decimal.Decimal
		found bool
	)
	for _, item := range s.items {
		if item.WalletID != walletID {
			continue
		}
		sum = sum.Add(item.SignedValue())
		found = true
	}

	if !found {
		return decimal.NullDecimal{}, nil
	}
	return decimal.NewNullDecimal(sum), nil
}

// filter returns copies of matching items ordered by date then id
func (s *WalletItemStore) filter(match func(*walletitem.WalletItem) bool) []*walletitem.WalletItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*walletitem.WalletItem, 0)
	for _, item := range s.items {
		if match(&item) {
			out = append(out, &item)
		}
	}

	sort.Slice(out, func(a, b int) bool {
		if !out[a].Date.Equal(out[b].Date) {
			return out[a].Date.Before(out[b].Date)
		}
		return out[a].ID < out[b].ID
	})
	return out
}
