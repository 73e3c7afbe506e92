package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-node/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-node/internal/journal"
)

func journalCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the persistent event journal",
	}
	cmd.AddCommand(journalDumpCmd(opts))
	cmd.AddCommand(journalClearCmd(opts))
	return cmd
}

func journalDumpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every journal entry, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(cmd.Context(), opts.configPath, func(ctx context.Context, j *journal.Journal) error {
				_, err := j.Dump(ctx, cmd.OutOrStdout())
				return err
			})
		},
	}
}

func journalClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every journal entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJournal(cmd.Context(), opts.configPath, func(ctx context.Context, j *journal.Journal) error {
				n, err := j.Clear(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", n)
				return nil
			})
		},
	}
}

// withJournal loads the config, opens the migrated database and runs fn.
func withJournal(ctx context.Context, configPath string, fn func(context.Context, *journal.Journal) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // read-only command

	return fn(ctx, journal.New(db.DB, cfg.Database.JournalLimit))
}
