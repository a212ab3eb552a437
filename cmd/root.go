// Package cmd holds the donation-hub command tree.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "github.com/phillip/donation-hub-go/config"
	"github.com/phillip/donation-hub-go/store"
)

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// openStore connects the backing store. Tests swap it for an in-memory one.
var openStore = func(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if err := cfg.Connect(ctx); err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := cfg.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}

	m := store.NewMongo(cfg.MongoClient, cfg.DBName)
	if err := m.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return m, closeFn, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "donation-hub",
		Short: "Donation platform backend",
		Long: `donation-hub serves the donation platform API: organizations and campaigns,
cash and physical donations, and the unified donation history with statistics.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger, err = cfg.NewLogger(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newStatsCmd())
	return root
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
