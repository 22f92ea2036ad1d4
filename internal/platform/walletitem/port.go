package walletitem

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for wallet item persistence (the ledger store).
// Implementations wrap backend failures with ErrStorageUnavailable.
type Repository interface {
	// Create persists a new item and assigns its ID.
	// Returns ErrWalletNotFound if the referenced wallet does not exist.
	Create(ctx context.Context, item *WalletItem) error

	// GetByID retrieves an item, or ErrItemNotFound
	GetByID(ctx context.Context, id int64) (*WalletItem, error)

	// Update replaces the date, type, description and value of an existing item.
	// The wallet reference is never rewritten.
	Update(ctx context.Context, item *WalletItem) error

	// Delete removes an item, or returns ErrItemNotFound
	Delete(ctx context.Context, id int64) error

	// FindByWalletAndDateRange returns one page of items dated within [start, end]
	// ordered by date then ID, together with the total number of matching items.
	FindByWalletAndDateRange(ctx context.Context, walletID int64, start, end time.Time, page, pageSize int) ([]*WalletItem, int64, error)

	// FindByWalletAndType returns all items of a type for the wallet
	FindByWalletAndType(ctx context.Context, walletID int64, t Type) ([]*WalletItem, error)

	// SumValue returns the signed sum of the wallet's items.
	// The result is not Valid when the wallet has no items.
	SumValue(ctx context.Context, walletID int64) (decimal.NullDecimal, error)
}

// WalletLookup reports whether a wallet exists
type WalletLookup interface {
	Exists(ctx context.Context, walletID int64) (bool, error)
}

// MembershipChecker reports whether a user may access a wallet
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, walletID int64) (bool, error)
}

// ComputeFunc loads the items of a cache bucket from the store
type ComputeFunc func(ctx context.Context) ([]*WalletItem, error)

// QueryCache memoizes items by (wallet, type).
type QueryCache interface {
	// GetOrCompute returns the cached bucket or computes and stores it.
	GetOrCompute(ctx context.Context, walletID int64, t Type, compute ComputeFunc) ([]*WalletItem, error)

	// InvalidateWallet drops every cached bucket of the wallet.
	InvalidateWallet(ctx context.Context, walletID int64) error
}

// EventPublisher delivers wallet item change notifications
type EventPublisher interface {
	Publish(ctx context.Context, event ItemEvent) error
}
