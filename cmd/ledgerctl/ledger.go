package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletledger/internal/infra/postgres"
	"github.com/kislikjeka/walletledger/internal/platform/membership"
	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
	"github.com/kislikjeka/walletledger/pkg/config"
	"github.com/kislikjeka/walletledger/pkg/logger"
)

const dateLayout = "2006-01-02"

// ledger is the read side of the wallet item service
type ledger interface {
	FindBetweenDates(ctx context.Context, userID, walletID int64, start, end time.Time, page int) (*walletitem.Page, error)
	FindByWalletAndType(ctx context.Context, walletID int64, label string) ([]*walletitem.WalletItem, error)
	SumByWallet(ctx context.Context, walletID int64) (decimal.Decimal, error)
}

// opener connects to a ledger; the returned func releases it
type opener func(ctx context.Context) (ledger, func(), error)

func commands(open opener, out io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&balanceCmd{open: open, out: out},
		&itemsCmd{open: open, out: out},
		&statementCmd{open: open, out: out},
	}
}

// openLedger builds the wallet item service against DATABASE_URL
func openLedger(ctx context.Context) (ledger, func(), error) {
	cfg := config.FromEnv()
	if cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}

	log := logger.New(cfg.Env, os.Stderr)

	db, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.DatabaseURL, MaxConns: 2, MinConns: 1})
	if err != nil {
		return nil, nil, err
	}

	members := membership.NewService(postgres.NewMembershipRepository(db.Pool), log)
	svc := walletitem.NewService(
		postgres.NewWalletItemRepository(db.Pool),
		walletitem.NewAccessGuard(members),
		walletitem.NewItemCache(log),
		walletitem.NopPublisher{},
		cfg.ItemsPerPage,
		log,
	)

	return svc, db.Close, nil
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, err)
	return subcommands.ExitFailure
}
