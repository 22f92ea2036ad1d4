package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kislikjeka/walletledger/internal/platform/membership"
)

var _ membership.Repository = (*MembershipRepository)(nil)

// MembershipRepository implements membership.Repository using PostgreSQL
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new PostgreSQL membership repository
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

// Create links a user to a wallet
func (r *MembershipRepository) Create(ctx context.Context, m *membership.Membership) error {
	query := `
		INSERT INTO users_wallet (users, wallet, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query, m.UserID, m.WalletID, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return membership.ErrDuplicate
		case isForeignKeyViolation(err):
			return membership.ErrUserOrWalletNotFound
		}
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}

// Exists reports whether the user is linked to the wallet
func (r *MembershipRepository) Exists(ctx context.Context, userID, walletID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users_wallet WHERE users = $1 AND wallet = $2)`
	if err := r.pool.QueryRow(ctx, query, userID, walletID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return exists, nil
}
