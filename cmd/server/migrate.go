package main

import (
	"fmt"
	"log/slog"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"github.com/iliyamo/invoice-dashboard/internal/config"
	"github.com/iliyamo/invoice-dashboard/internal/database"
)

const directionFlag = "direction"

var migrateFlags = map[string]cobraflags.Flag{
	directionFlag: &cobraflags.StringFlag{
		Name:  directionFlag,
		Value: "up",
		Usage: "Migration direction: up creates the tables, down drops them",
	},
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or drop the database tables",
		RunE:  migrateCommand,
	}
	cobraflags.RegisterMap(cmd, migrateFlags)
	return cmd
}

func migrateCommand(cmd *cobra.Command, _ []string) error {
	direction := migrateFlags[directionFlag].GetString()
	if direction != "up" && direction != "down" {
		return fmt.Errorf("unknown direction %q (want up or down)", direction)
	}

	dc, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Open(dc.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if direction == "down" {
		err = database.Drop(cmd.Context(), db)
	} else {
		err = database.Migrate(cmd.Context(), db)
	}
	if err != nil {
		return err
	}
	slog.Info("migration applied", "direction", direction)
	return nil
}
