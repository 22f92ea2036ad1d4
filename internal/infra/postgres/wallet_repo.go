package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletledger/internal/platform/wallet"
)

var _ wallet.Repository = (*WalletRepository)(nil)

// WalletRepository implements the wallet repository using PostgreSQL
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new PostgreSQL wallet repository
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// Create inserts the wallet and its owner's membership in one transaction
func (r *WalletRepository) Create(ctx context.Context, w *wallet.Wallet, ownerID int64) error {
	return withTx(ctx, r.pool, func(q querier) error {
		err := q.QueryRow(ctx, `
			INSERT INTO wallets (name, value, created_at)
			VALUES ($1, $2::numeric, $3)
			RETURNING id
		`, w.Name, w.Value.String(), w.CreatedAt).Scan(&w.ID)
		if err != nil {
			if isCheckViolation(err) {
				return wallet.ErrNegativeValue
			}
			return fmt.Errorf("failed to create wallet: %w", err)
		}

		_, err = q.Exec(ctx, `
			INSERT INTO users_wallet (users, wallet, created_at)
			VALUES ($1, $2, $3)
		`, ownerID, w.ID, w.CreatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return wallet.ErrInvalidUserID
			}
			return fmt.Errorf("failed to link wallet owner: %w", err)
		}

		return nil
	})
}

// GetByID retrieves a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id int64) (*wallet.Wallet, error) {
	query := `
		SELECT id, name, value::text, created_at
		FROM wallets
		WHERE id = $1
	`

	w, err := scanWallet(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return w, nil
}

// GetByUserID retrieves all wallets the user is linked to
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) ([]*wallet.Wallet, error) {
	query := `
		SELECT w.id, w.name, w.value::text, w.created_at
		FROM wallets w
		JOIN users_wallet uw ON uw.wallet = w.id
		WHERE uw.users = $1
		ORDER BY w.id ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	wallets := make([]*wallet.Wallet, 0)
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallets: %w", err)
	}

	return wallets, nil
}

// Exists checks if a wallet exists
func (r *WalletRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM wallets WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wallet existence: %w", err)
	}
	return exists, nil
}

func scanWallet(row pgx.Row) (*wallet.Wallet, error) {
	var (
		w     wallet.Wallet
		value string
	)

	if err := row.Scan(&w.ID, &w.Name, &value, &w.CreatedAt); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q for wallet %d: %w", value, w.ID, err)
	}
	w.Value = d

	return &w, nil
}
