package walletitem

import "context"

// AccessGuard checks wallet membership before scoped reads
type AccessGuard struct {
	members MembershipChecker
}

// NewAccessGuard creates a new access guard
func NewAccessGuard(members MembershipChecker) *AccessGuard {
	return &AccessGuard{members: members}
}

// Authorize returns false when the user is not a member of the wallet.
// An error is returned only when the membership lookup itself fails.
func (g *AccessGuard) Authorize(ctx context.Context, userID, walletID int64) (bool, error) {
	if userID <= 0 || walletID <= 0 {
		return false, nil
	}

	ok, err := g.members.IsMember(ctx, userID, walletID)
	if err != nil {
		return false, StorageError("check membership", err)
	}

	return ok, nil
}
