package walletitem

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceAggregator turns the store's signed sum into a wallet balance
type BalanceAggregator struct {
	repo Repository
}

// NewBalanceAggregator creates a new balance aggregator
func NewBalanceAggregator(repo Repository) *BalanceAggregator {
	return &BalanceAggregator{repo: repo}
}

// Sum returns the wallet balance: credits minus debits.
// A wallet without items has a zero balance.
func (a *BalanceAggregator) Sum(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	sum, err := a.repo.SumValue(ctx, walletID)
	if err != nil {
		return decimal.Zero, StorageError("sum wallet items", err)
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}
