package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newLsCmd() *cobra.Command {
	var prefix string

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List all variable names",
		Long:  `Print the name of every stored variable in ascending order, one per line.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			return runLs(cmd.OutOrStdout(), s, prefix)
		},
	}

	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "only list names starting with this prefix")

	return cmd
}

// keyLister is the part of the store ls needs.
type keyLister interface {
	ListPrefix(prefix string) ([]string, error)
}

func runLs(w io.Writer, s keyLister, prefix string) error {
	keys, err := s.ListPrefix(prefix)
	if err != nil {
		return fmt.Errorf("list variables: %w", err)
	}

	for _, key := range keys {
		fmt.Fprintln(w, key)
	}
	return nil
}
