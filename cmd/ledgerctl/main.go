// Command ledgerctl queries wallet ledgers from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range commands(openLedger, os.Stdout) {
		commander.Register(c, "ledger")
	}

	flag.Parse()
	code := commander.Execute(ctx)
	stop()
	os.Exit(int(code))
}
