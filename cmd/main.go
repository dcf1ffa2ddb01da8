package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/nowplaying/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "nowplaying",
		Usage:    "Show what Spotify is playing, with a smoothly animated progress bar",
		Version:  "0.1.0",
		Flags:    globalFlags(),
		Before:   runner.Before,
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		stop()
		logger.Fatalf("application error: %v", err)
	}
}
