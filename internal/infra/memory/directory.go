package memory

import (
	"context"
	"sync"
)

// Directory tracks known wallets and their members in memory.
// It satisfies walletitem.WalletLookup and walletitem.MembershipChecker.
type Directory struct {
	mu      sync.RWMutex
	wallets map[int64]struct{}
	members map[int64]map[int64]struct{} // wallet -> users
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{
		wallets: make(map[int64]struct{}),
		members: make(map[int64]map[int64]struct{}),
	}
}

// AddWallet registers a wallet id
func (d *Directory) AddWallet(walletID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.wallets[walletID] = struct{}{}
}

// AddMember links a user to a wallet, registering the wallet if needed
func (d *Directory) AddMember(userID, walletID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.wallets[walletID] = struct{}{}
	users, ok := d.members[walletID]
	if !ok {
		users = make(map[int64]struct{})
		d.members[walletID] = users
	}
	users[userID] = struct{}{}
}

// Exists implements walletitem.WalletLookup
func (d *Directory) Exists(_ context.Context, walletID int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.wallets[walletID]
	return ok, nil
}

// IsMember implements walletitem.MembershipChecker
func (d *Directory) IsMember(_ context.Context, userID, walletID int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.members[walletID][userID]
	return ok, nil
}
