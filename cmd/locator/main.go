package main

import (
	"context"
	"fmt"
	"nearby-pro-service/internal/app"
	"nearby-pro-service/internal/config"
	"nearby-pro-service/internal/platform/logger"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	logLevel string
	timeout  time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "locator",
		Short:        "Find professionals near a place from the command line",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall time limit")

	root.AddCommand(newNearbyCmd(opts), newSuggestCmd(opts))
	return root
}

// setup loads configuration and wires the application for one command run.
func setup(cmd *cobra.Command, opts *rootOptions) (*app.App, *zap.Logger, error) {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(opts.logLevel, "console")
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	logger.Set(log)

	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}
