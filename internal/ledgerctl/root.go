// Package ledgerctl implements the operator CLI for the persisted budget ledger.
package ledgerctl

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/ledger"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/components"
	"github.com/omnitrip-budget-ledger/internal/logger"
	"github.com/spf13/cobra"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Inspect and repair the budget ledger",
	Long:          "Inspect persisted budget items, recover interrupted checkouts and export archived receipts.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "ledgerctl: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "ledgerctl", "Config file base name (<name>.env in ./configs or .)")
}

// env is what every subcommand needs: config and a logger on stderr so that
// stdout carries only command output.
type env struct {
	cfg *config.Config
	log *slog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: logger.New(os.Stderr, cfg)}, nil
}

// openStore loads the persisted ledger. The returned store writes changes back
// through the mirror; call flush to persist them and closeFn when done.
func (e *env) openStore(ctx context.Context) (store *ledger.Store, flush func(context.Context) error, closeFn func(), err error) {
	repo, closeRepo, err := components.OpenSnapshotRepository(ctx, e.log, e.cfg, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	mirror := ledger.NewMirror(e.log, repo, e.cfg.Ledger.MirrorWriteTimeout)
	store = ledger.NewStore(e.log, ledger.Options{
		BaseCurrency:       e.cfg.Ledger.BaseCurrency,
		DefaultTotalBudget: e.cfg.Ledger.DefaultTotalBudget,
		Persister:          mirror,
	})
	if err := store.Load(ctx, repo); err != nil {
		closeRepo()
		return nil, nil, nil, fmt.Errorf("failed to load ledger state: %w", err)
	}
	return store, mirror.Flush, closeRepo, nil
}

func formatAmount(amount float64, currency string) string {
	return fmt.Sprintf("%.2f %s", amount, currency)
}

func statusLabel(status budget.ItemStatus) string {
	if status == "" {
		return string(budget.ItemStatusPlanned)
	}
	return string(status)
}
