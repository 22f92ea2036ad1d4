package wallet

import "context"

// Repository defines the interface for wallet data access
type Repository interface {
	// Create creates a new wallet and links ownerID as its first member
	Create(ctx context.Context, wallet *Wallet, ownerID int64) error

	// GetByID retrieves a wallet by ID
	GetByID(ctx context.Context, id int64) (*Wallet, error)

	// GetByUserID retrieves all wallets the user is a member of
	GetByUserID(ctx context.Context, userID int64) ([]*Wallet, error)

	// Exists checks if a wallet with the given ID exists
	Exists(ctx context.Context, id int64) (bool, error)
}

// MembershipChecker reports whether a user may access a wallet
type MembershipChecker interface {
	IsMember(ctx context.Context, userID, walletID int64) (bool, error)
}
