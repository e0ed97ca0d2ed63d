package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unrss/envdoter/internal/envfile"
)

func newSortCmd() *cobra.Command {
	var (
		path     string
		check    bool
		toStdout bool
	)

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Group and sort a .env file by key prefix",
		Long: `Rewrite a .env file so that keys sharing a prefix (the part before the
first underscore) are grouped together, groups and keys sorted, with a blank
line after each group. Prefixes used by a single key go in the leading group.

Use --check to verify a file is already sorted (exit code 1 if not).
Use --stdout to print the sorted result without touching the file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = cfg.GetEnvFile()
			}

			switch {
			case check:
				return runSortCheck(cmd.OutOrStdout(), path)
			case toStdout:
				return runSortStdout(cmd.OutOrStdout(), path)
			default:
				return runSort(path)
			}
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "path to the .env file (default .env)")
	cmd.Flags().BoolVar(&check, "check", false, "report whether the file is sorted without writing")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "print the sorted file instead of writing it")
	cmd.MarkFlagsMutuallyExclusive("check", "stdout")

	return cmd
}

func runSort(path string) error {
	res, err := envfile.Sort(path)
	if err != nil {
		return fmt.Errorf("sort %s: %w", path, err)
	}

	logger.Debug("env file sorted",
		zap.String("path", path),
		zap.Int("vars", res.Vars),
		zap.Int("groups", res.Groups),
		zap.Bool("changed", res.Changed))
	return nil
}

func runSortCheck(w io.Writer, path string) error {
	sorted, err := envfile.IsSorted(path)
	if err != nil {
		return fmt.Errorf("check %s: %w", path, err)
	}

	c := newColorizer(w)
	if !sorted {
		fmt.Fprintf(w, "%s %s\n", c.yellow("not sorted:"), path)
		return fmt.Errorf("%s is not sorted", path)
	}

	fmt.Fprintf(w, "%s %s\n", c.green("sorted:"), path)
	return nil
}

func runSortStdout(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read env file: %w", err)
	}

	out, ok, err := envfile.SortBytes(data)
	if err != nil {
		return fmt.Errorf("sort %s: %w", path, err)
	}
	if !ok {
		out = data
	}

	_, err = w.Write(out)
	return err
}
