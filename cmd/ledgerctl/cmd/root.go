// Package cmd provides the ledgerctl commands for inspecting and preparing
// the cash-flow ledger outside of Telegram.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cashflowbot/internal/app"
	"cashflowbot/internal/config"
	"cashflowbot/internal/store"
)

// Opener returns the repository the commands work on plus its release func.
type Opener func(ctx context.Context, logger *slog.Logger) (store.Repository, func() error, error)

// OpenFromEnv opens the ledger configured by the same environment the bot uses.
func OpenFromEnv(ctx context.Context, logger *slog.Logger) (store.Repository, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	ledger, err := app.OpenLedger(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return ledger.Repo, ledger.Close, nil
}

type cli struct {
	open   Opener
	now    func() time.Time
	debug  bool
	logger *slog.Logger
}

// NewRootCmd builds the command tree. now is the clock used for "today" and
// "this month"; nil means time.Now.
func NewRootCmd(open Opener, now func() time.Time) *cobra.Command {
	if now == nil {
		now = time.Now
	}
	c := &cli{open: open, now: now}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect and prepare the cash-flow ledger",
		Long: `ledgerctl reads the same ledger the Telegram bot writes to.

Example:
  ledgerctl init
  ledgerctl products
  ledgerctl summary month --month 3 --year 2025`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logLevel := slog.LevelWarn
			if c.debug {
				logLevel = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			}))
		},
	}
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(c.initCmd())
	root.AddCommand(c.productsCmd())
	root.AddCommand(c.salesCmd())
	root.AddCommand(c.debtsCmd())
	root.AddCommand(c.summaryCmd())
	return root
}

// Execute runs ledgerctl against the environment-configured ledger.
func Execute() error {
	return NewRootCmd(OpenFromEnv, nil).Execute()
}

func (c *cli) withRepo(cmd *cobra.Command, fn func(repo store.Repository) error) error {
	logger := c.logger
	if logger == nil {
		logger = slog.Default()
	}
	repo, closeFn, err := c.open(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn("close ledger", slog.Any("error", err))
		}
	}()
	return fn(repo)
}
