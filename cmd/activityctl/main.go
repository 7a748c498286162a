package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github-activity-sync/internal/app"
	"github-activity-sync/internal/config"
)

var (
	accountID  int64
	startDate  string
	endDate    string
	outputJSON bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "activityctl",
	Short: "GitHub activity sync tool",
	Long: `A CLI for the GitHub activity sync service.

It runs one-shot syncs against the configured database, prints the stored
daily counters and repositories, and applies schema migrations.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reposCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newLogger writes text logs to stderr so stdout stays parseable.
func newLogger(level string) *slog.Logger {
	v := new(slog.LevelVar)
	app.SetLogLevel(level, v)
	if verbose {
		v.Set(slog.LevelDebug)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: v}))
}

// openRuntime loads configuration and connects to the database.
func openRuntime(ctx context.Context) (*app.Runtime, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg.LogLevel)

	rt, err := app.NewRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return rt, cfg, nil
}

func addAccountFlag(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&accountID, "account", 0, "account id")
	_ = cmd.MarkFlagRequired("account")
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&startDate, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "to", "", "end date (YYYY-MM-DD)")
}
