package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"resume-api/internal/adapter/cli"

	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand(cli.Options{Env: os.LookupEnv}).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrInvalidResume):
		stop()
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(2)
	}
}
