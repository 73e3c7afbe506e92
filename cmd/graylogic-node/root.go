package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "graylogic-node",
		Short:         "Gray Logic sensor/actuator node",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFile(opts.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNode(cmd.Context(), opts.configPath)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", getConfigPath(), "Path to the node configuration file")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file with credentials")

	cmd.AddCommand(runCmd(opts))
	cmd.AddCommand(journalCmd(opts))
	cmd.AddCommand(migrateCmd(opts))
	cmd.AddCommand(versionCmd())
	return cmd
}

// getConfigPath returns GRAYLOGIC_NODE_CONFIG or the default path.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_NODE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadEnvFile loads KEY=value pairs into the environment without
// overriding variables already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "graylogic-node %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
