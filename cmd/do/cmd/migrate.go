package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/stoicjournal/stoic/internal/config"
	"github.com/stoicjournal/stoic/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, conn *sqlx.DB) error {
				err := db.RunMigrations(cmd.Context(), conn.DB, cfg.DBDriver)
				if err != nil {
					return err
				}
				return printVersion(cmd, cfg, conn)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, conn *sqlx.DB) error {
				err := db.MigrateDown(cmd.Context(), conn.DB, cfg.DBDriver)
				if err != nil {
					return err
				}
				return printVersion(cmd, cfg, conn)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(cfg *config.Config, conn *sqlx.DB) error {
				return printVersion(cmd, cfg, conn)
			})
		},
	})

	return cmd
}

func withDatabase(fn func(*config.Config, *sqlx.DB) error) error {
	cfg := config.LoadDatabase()

	conn, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(cfg, conn)
}

func printVersion(cmd *cobra.Command, cfg *config.Config, conn *sqlx.DB) error {
	version, err := db.MigrationVersion(cmd.Context(), conn.DB, cfg.DBDriver)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
	return nil
}
