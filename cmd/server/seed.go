package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/database"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the placeholder data into empty tables",
		Long: `Insert the placeholder users, customers, invoices and revenue rows.

Tables that already contain rows are left untouched, so the command is safe
to run more than once. Run "migrate" first.`,
		RunE: seedCommand,
	}
}

func seedCommand(cmd *cobra.Command, _ []string) error {
	dc, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Open(dc.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Seed(cmd.Context(), db, dc.BcryptCost); err != nil {
		return err
	}
	slog.Info("seed complete")
	return nil
}
