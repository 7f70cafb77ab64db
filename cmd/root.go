// Package cmd defines and implements the CLI commands for the pealimd executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/whysixthreeseven/pealim-local-dictionary/internal/config"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/logging"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/metrics"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/rawstore"
	"github.com/whysixthreeseven/pealim-local-dictionary/internal/wordstore"
)

var cfgFile string

type appKeyType struct{}

var appKey appKeyType

// app bundles the services every subcommand needs.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pealimd",
		Short: "Harvests and composes a local multilingual Hebrew dictionary.",
		Long: `pealimd collects dictionary pages from pealim.com in three locales,
stores the raw HTML fragments in a local JSON collection, and composes
structured word records into Postgres for local search and study.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			metrics.Init()

			ctx := context.WithValue(cmd.Context(), appKey, &app{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey).(*app); ok && a != nil {
				_ = a.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default settings plus PEALIM_* env)")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newConvertCmd())
	cmd.AddCommand(newRebuildCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app, error) {
	a, ok := ctx.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}

func (a *app) rawStore() *rawstore.Store {
	return rawstore.New(a.cfg.Store.CollectionPath, a.cfg.Store.MissingPath, a.logger)
}

func (a *app) wordStore(ctx context.Context) (*wordstore.Store, error) {
	store, err := wordstore.NewStore(ctx, wordstore.Config{
		DSN:      a.cfg.DB.DSN,
		Table:    a.cfg.DB.Table,
		MaxConns: a.cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("open word store: %w", err)
	}
	return store, nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
