// Package cmd implements the envdoter CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unrss/envdoter/internal/config"
	"github.com/unrss/envdoter/internal/logging"
	"github.com/unrss/envdoter/internal/store"
)

// Assets holds embedded files passed from main.
type Assets struct {
	Version string
}

var (
	// cfg holds the loaded configuration, available to all commands.
	cfg *config.Config

	// logger is replaced once flags and configuration are known.
	logger = zap.NewNop()
)

// Execute runs the root command with the provided assets.
func Execute(assets Assets) error {
	root := newRootCmd(assets)
	err := root.Execute()
	_ = logger.Sync()
	return err
}

func newRootCmd(assets Assets) *cobra.Command {
	var (
		dbPath  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "envdoter",
		Short: "Keep environment variables and .env files in order",
		Long: `envdoter stores named variables in a private per-user database and
keeps .env files tidy by grouping and sorting their keys by prefix.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(dbPath, verbose)
		},
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"path to the variable database (overrides db_path)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"log debug output to stderr")

	// Add subcommands
	cmd.AddCommand(
		newInitCmd(),
		newLsCmd(),
		newAddCmd(),
		newGetCmd(),
		newSortCmd(),
		newConfigCmd(),
		newVersionCmd(assets.Version),
	)

	return cmd
}

func initConfig(dbPath string, verbose bool) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	logger, err = logging.New(cfg.LogLevel, verbose)
	return err
}

// openStore opens the variable database named by the configuration.
func openStore() (*store.Store, error) {
	path, err := cfg.GetDBPath()
	if err != nil {
		return nil, fmt.Errorf("%w: resolve database path: %w", store.ErrUnavailable, err)
	}

	return store.Open(path, store.WithLogger(logger))
}
