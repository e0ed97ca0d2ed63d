package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Get a value from the database",
		Long:  `Print the stored value of a variable. An unknown name prints an empty line.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			value, ok, err := s.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("get %s: %w", args[0], err)
			}
			if !ok {
				logger.Debug("variable not found", zap.String("key", args[0]))
			}

			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}
