package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/infrastructure/database"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect or roll back the journal database schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts.configPath, func(ctx context.Context, db *database.DB) error {
				applied, pending, err := db.MigrationStatus(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, m := range applied {
					fmt.Fprintf(out, "applied  %s\n", m.Version)
				}
				for _, m := range pending {
					fmt.Fprintf(out, "pending  %s %s\n", m.Version, m.Name)
				}
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), opts.configPath, func(ctx context.Context, db *database.DB) error {
				if err := db.MigrateDown(ctx); err != nil {
					return fmt.Errorf("rolling back: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back latest migration")
				return nil
			})
		},
	})
	return cmd
}

// withDatabase loads the config and opens the database without migrating.
func withDatabase(ctx context.Context, configPath string, fn func(context.Context, *database.DB) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // CLI command

	return fn(ctx, db)
}
