package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskroom-cli/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCmd().ExecuteContext(ctx)
	os.Exit(cli.ExitCode(err))
}
