package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
)

var _ walletitem.Repository = (*WalletItemRepository)(nil)

// WalletItemRepository implements walletitem.Repository using PostgreSQL.
// Values travel as text to keep NUMERIC precision exact.
type WalletItemRepository struct {
	pool *pgxpool.Pool
}

// NewWalletItemRepository creates a new PostgreSQL wallet item repository
func NewWalletItemRepository(pool *pgxpool.Pool) *WalletItemRepository {
	return &WalletItemRepository{pool: pool}
}

const walletItemColumns = `id, wallet, date, type, description, value::text`

// Create inserts a new item and assigns its ID
func (r *WalletItemRepository) Create(ctx context.Context, item *walletitem.WalletItem) error {
	query := `
		INSERT INTO wallet_items (wallet, date, type, description, value)
		VALUES ($1, $2, $3, $4, $5::numeric)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		item.WalletID,
		item.Date,
		string(item.Type),
		item.Description,
		item.Value.String(),
	).Scan(&item.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return walletitem.ErrWalletNotFound
		}
		return walletitem.StorageError("insert wallet item", err)
	}

	return nil
}

// GetByID retrieves an item by ID
func (r *WalletItemRepository) GetByID(ctx context.Context, id int64) (*walletitem.WalletItem, error) {
	query := `SELECT ` + walletItemColumns + ` FROM wallet_items WHERE id = $1`

	item, err := scanWalletItem(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, walletitem.ErrItemNotFound
		}
		return nil, walletitem.StorageError("get wallet item", err)
	}

	return item, nil
}

// Update rewrites date, type, description and value; the wallet column is never touched
func (r *WalletItemRepository) Update(ctx context.Context, item *walletitem.WalletItem) error {
	query := `
		UPDATE wallet_items
		SET date = $1, type = $2, description = $3, value = $4::numeric
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query,
		item.Date,
		string(item.Type),
		item.Description,
		item.Value.String(),
		item.ID,
	)
	if err != nil {
		return walletitem.StorageError("update wallet item", err)
	}

	if result.RowsAffected() == 0 {
		return walletitem.ErrItemNotFound
	}

	return nil
}

// Delete removes an item by ID
func (r *WalletItemRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM wallet_items WHERE id = $1`, id)
	if err != nil {
		return walletitem.StorageError("delete wallet item", err)
	}

	if result.RowsAffected() == 0 {
		return walletitem.ErrItemNotFound
	}

	return nil
}

// FindByWalletAndDateRange returns one page of the wallet's items within [start, end].
// The count and the page are read from one snapshot.
func (r *WalletItemRepository) FindByWalletAndDateRange(ctx context.Context, walletID int64, start, end time.Time, page, pageSize int) ([]*walletitem.WalletItem, int64, error) {
	var (
		total int64
		items = make([]*walletitem.WalletItem, 0)
	)

	err := withSnapshot(ctx, r.pool, func(q querier) error {
		countQuery := `SELECT COUNT(*) FROM wallet_items WHERE wallet = $1 AND date BETWEEN $2 AND $3`
		if err := q.QueryRow(ctx, countQuery, walletID, start, end).Scan(&total); err != nil {
			return fmt.Errorf("count wallet items: %w", err)
		}

		if page < 0 || pageSize <= 0 || int64(page) >= (total+int64(pageSize)-1)/int64(pageSize) {
			return nil
		}

		query := `
			SELECT ` + walletItemColumns + `
			FROM wallet_items
			WHERE wallet = $1 AND date BETWEEN $2 AND $3
			ORDER BY date ASC, id ASC
			LIMIT $4 OFFSET $5
		`

		rows, err := q.Query(ctx, query, walletID, start, end, pageSize, int64(page)*int64(pageSize))
		if err != nil {
			return fmt.Errorf("query wallet items: %w", err)
		}

		items, err = collectWalletItems(rows)
		return err
	})
	if err != nil {
		return nil, 0, walletitem.StorageError("find wallet items by date", err)
	}

	return items, total, nil
}

// FindByWalletAndType returns all of the wallet's items of one type
func (r *WalletItemRepository) FindByWalletAndType(ctx context.Context, walletID int64, t walletitem.Type) ([]*walletitem.WalletItem, error) {
	query := `
		SELECT ` + walletItemColumns + `
		FROM wallet_items
		WHERE wallet = $1 AND type = $2
		ORDER BY date ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, walletID, string(t))
	if err != nil {
		return nil, walletitem.StorageError("query wallet items by type", err)
	}

	items, err := collectWalletItems(rows)
	if err != nil {
		return nil, walletitem.StorageError("scan wallet items", err)
	}

	return items, nil
}

// SumValue returns credits minus debits, NULL when the wallet has no items
func (r *WalletItemRepository) SumValue(ctx context.Context, walletID int64) (decimal.NullDecimal, error) {
	query := `
		SELECT SUM(CASE WHEN type = 'CREDIT' THEN value ELSE -value END)::text
		FROM wallet_items
		WHERE wallet = $1
	`

	var sum *string
	if err := r.pool.QueryRow(ctx, query, walletID).Scan(&sum); err != nil {
		return decimal.NullDecimal{}, walletitem.StorageError("sum wallet items", err)
	}

	if sum == nil {
		return decimal.NullDecimal{}, nil
	}

	d, err := decimal.NewFromString(*sum)
	if err != nil {
		return decimal.NullDecimal{}, walletitem.StorageError("parse wallet sum", err)
	}

	return decimal.NewNullDecimal(d), nil
}

func scanWalletItem(row pgx.Row) (*walletitem.WalletItem, error) {
	var (
		item  walletitem.WalletItem
		typ   string
		value string
	)

	if err := row.Scan(&item.ID, &item.WalletID, &item.Date, &typ, &item.Description, &value); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid value %q for wallet item %d: %w", value, item.ID, err)
	}

	item.Type = walletitem.Type(typ)
	item.Value = d
	item.Date = walletitem.DateOf(item.Date)

	return &item, nil
}

func collectWalletItems(rows pgx.Rows) ([]*walletitem.WalletItem, error) {
	defer rows.Close()

	items := make([]*walletitem.WalletItem, 0)
	for rows.Next() {
		item, err := scanWalletItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wallet items: %w", err)
	}

	return items, nil
}
