package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TenderScanner/internal/app"
	"TenderScanner/internal/config"
	"TenderScanner/internal/logging"

	_ "time/tzdata"
)

var version = "dev"

var (
	flagConfig string
	flagDryRun bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tenderscanner",
		Short:         "Fetch new tenders, assess them and post them to Slack",
		Long:          "tenderscanner searches DevelopmentAid for tenders posted since the previous working day, researches their requirements, scores them against the bid rubric and posts one Slack thread per tender.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app.Application) error {
				a.RunOnce(ctx)
				return nil
			})
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "render notifications in the terminal instead of posting them")

	root.AddCommand(&cobra.Command{
		Use:   "schedule",
		Short: "Run a cycle every weekday morning until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, a *app.Application) error {
				return a.RunScheduled(ctx)
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tenderscanner %s\n", version)
		},
	})
	return root
}

func run(cmd *cobra.Command, body func(context.Context, *app.Application) error) error {
	if flagConfig != "" {
		if err := os.Setenv("TENDER_SCANNER_CONFIG", flagConfig); err != nil {
			return fmt.Errorf("set config path: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger, app.Options{DryRun: flagDryRun, Out: cmd.OutOrStdout()})
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return err
	}

	if err := body(ctx, application); err != nil {
		logger.Error("application stopped", "error", err)
		return err
	}
	return nil
}
