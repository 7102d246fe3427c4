package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/accounts-api/internal/config"
	"github.com/redmonkez12/accounts-api/internal/database"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	for _, direction := range []struct {
		name  string
		short string
	}{
		{database.MigrateUp, "Apply all pending migrations"},
		{database.MigrateDown, "Roll back the most recent migration"},
		{database.MigrateStatus, "Print the status of every migration"},
	} {
		dir := direction.name
		migrateCmd.AddCommand(&cobra.Command{
			Use:   dir,
			Short: direction.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runMigrate(cmd, dir)
			},
		})
	}

	return migrateCmd
}

func runMigrate(cmd *cobra.Command, direction string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(cmd.Context(), cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return database.Migrate(cmd.Context(), db.DB, direction)
}
