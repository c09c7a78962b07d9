package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Victorkib/kisheka-construction-sub013/internal/cli"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Services are wired by the root command once flags and config are known.
	app := &cli.App{
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
	return cli.Execute(ctx, app, os.Args[1:])
}
