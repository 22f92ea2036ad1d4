package testdb

import (
	"context"
	"fmt"
)

// CreateUser inserts a user with a placeholder password hash and returns its id
func (db *TestDB) CreateUser(ctx context.Context, email string) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, 'hash')
		RETURNING id
	`, "Test User", email).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to seed user: %w", err)
	}
	return id, nil
}

// CreateWallet inserts a wallet and links every given user to it
func (db *TestDB) CreateWallet(ctx context.Context, name string, members ...int64) (int64, error) {
	var id int64
	if err := db.Pool.QueryRow(ctx, `INSERT INTO wallets (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to seed wallet: %w", err)
	}

	for _, userID := range members {
		if _, err := db.Pool.Exec(ctx, `INSERT INTO users_wallet (users, wallet) VALUES ($1, $2)`, userID, id); err != nil {
			return 0, fmt.Errorf("failed to seed membership: %w", err)
		}
	}
	return id, nil
}
