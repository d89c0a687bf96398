package main // Entry point package

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/invoice-dashboard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Invoice dashboard API server and tools",
	Long: `Invoice dashboard backend.

Available subcommands:
  serve    - Run the HTTP API
  migrate  - Create or drop the database tables
  seed     - Load the placeholder users, customers, invoices and revenue
  worker   - Consume invoice change events into the audit log`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		config.LoadDotEnv()
		return setupLogger()
	},
}

func main() {
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSeedCommand())
	rootCmd.AddCommand(newWorkerCommand())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// setupLogger installs the default slog logger: text in dev, JSON elsewhere.
func setupLogger() error {
	lc, err := config.LoadLogConfig()
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: lc.SlogLevel()}
	var h slog.Handler = slog.NewJSONHandler(os.Stderr, opts)
	if lc.Env == "dev" {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
