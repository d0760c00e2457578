package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Carmen-Shannon/oxy-batch/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run executes the root command with a context cancelled on interrupt.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return cli.NewRootCmd(version).ExecuteContext(ctx)
}
