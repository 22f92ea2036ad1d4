package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
	"github.com/kislikjeka/walletledger/pkg/config"
	"github.com/kislikjeka/walletledger/pkg/money"
)

var errWalletRequired = errors.New("-wallet is required")

type balanceCmd struct {
	open     opener
	out      io.Writer
	wallet   int64
	currency string
}

func (*balanceCmd) Name() string     { return "balance" }
func (*balanceCmd) Synopsis() string { return "print the balance of a wallet" }
func (*balanceCmd) Usage() string {
	return `ledgerctl balance -wallet <id> [-currency BRL]

  Prints credits minus debits for the wallet. A wallet without items has a zero balance.
`
}

func (c *balanceCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.wallet, "wallet", 0, "wallet ID")
	f.StringVar(&c.currency, "currency", config.FromEnv().BalanceCurrency, "ISO 4217 currency used for display")
}

func (c *balanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.wallet <= 0 {
		return fail(errWalletRequired)
	}

	l, closeFn, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	total, err := l.SumByWallet(ctx, c.wallet)
	if err != nil {
		return fail(err)
	}

	fmt.Fprintf(c.out, "wallet %d: %s (%s)\n", c.wallet, total.String(), money.Format(total, c.currency))
	return subcommands.ExitSuccess
}

type itemsCmd struct {
	open   opener
	out    io.Writer
	wallet int64
	label  string
}

func (*itemsCmd) Name() string     { return "items" }
func (*itemsCmd) Synopsis() string { return "list the items of a wallet by type" }
func (*itemsCmd) Usage() string {
	return `ledgerctl items -wallet <id> -type <ENTRADA|SAÍDA|CREDIT|DEBIT>
`
}

func (c *itemsCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.wallet, "wallet", 0, "wallet ID")
	f.StringVar(&c.label, "type", walletitem.LabelCredit, "item type label")
}

func (c *itemsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.wallet <= 0 {
		return fail(errWalletRequired)
	}

	l, closeFn, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	items, err := l.FindByWalletAndType(ctx, c.wallet, c.label)
	if err != nil {
		return fail(err)
	}

	writeItems(c.out, items)
	return subcommands.ExitSuccess
}

type statementCmd struct {
	open   opener
	out    io.Writer
	user   int64
	wallet int64
	from   string
	to     string
	page   int
}

func (*statementCmd) Name() string     { return "statement" }
func (*statementCmd) Synopsis() string { return "print one page of a wallet statement" }
func (*statementCmd) Usage() string {
	return `ledgerctl statement -user <id> -wallet <id> -from YYYY-MM-DD -to YYYY-MM-DD [-page N]

  Lists the wallet items dated within [from, to] as seen by a member of the wallet.
`
}

func (c *statementCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.user, "user", 0, "ID of a wallet member")
	f.Int64Var(&c.wallet, "wallet", 0, "wallet ID")
	f.StringVar(&c.from, "from", "", "first date, inclusive")
	f.StringVar(&c.to, "to", "", "last date, inclusive (defaults to today)")
	f.IntVar(&c.page, "page", 0, "zero-based page number")
}

func (c *statementCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.wallet <= 0 {
		return fail(errWalletRequired)
	}

	start, err := time.Parse(dateLayout, c.from)
	if err != nil {
		return fail(fmt.Errorf("invalid -from: %w", err))
	}
	end := time.Now().UTC()
	if c.to != "" {
		if end, err = time.Parse(dateLayout, c.to); err != nil {
			return fail(fmt.Errorf("invalid -to: %w", err))
		}
	}

	l, closeFn, err := c.open(ctx)
	if err != nil {
		return fail(err)
	}
	defer closeFn()

	page, err := l.FindBetweenDates(ctx, c.user, c.wallet, start, end, c.page)
	if err != nil {
		return fail(err)
	}

	writeItems(c.out, page.Items)
	fmt.Fprintf(c.out, "page %d of %d, %d items\n", page.Page+1, page.TotalPages(), page.TotalCount)
	return subcommands.ExitSuccess
}

func writeItems(out io.Writer, items []*walletitem.WalletItem) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tVALUE\tDESCRIPTION")
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", it.ID, it.Date.Format(dateLayout), it.Type.Label(), it.Value.String(), it.Description)
	}
	tw.Flush()
}
