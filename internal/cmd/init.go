package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unrss/envdoter/internal/envfile"
)

func newInitCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new .env file",
		Long: `Create an empty .env file. If the file already exists it is left alone.
Defaults to the env_file setting (.env).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = cfg.GetEnvFile()
			}
			return runInit(cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "path to the .env file (default .env)")

	return cmd
}

func runInit(w io.Writer, path string) error {
	err := envfile.Create(path)
	if errors.Is(err, envfile.ErrExists) {
		fmt.Fprintln(w, "File already exists. Exiting.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	logger.Debug("env file created", zap.String("path", path))
	fmt.Fprintf(w, "envdoter: created %s\n", path)
	return nil
}
