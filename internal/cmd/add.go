package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> [value]",
		Short: "Add a new variable to the database",
		Long: `Store a variable, replacing any previous value.
The value may be given as a second argument or inline as NAME=VALUE.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, value, err := parseAddArgs(args)
			if err != nil {
				return err
			}

			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.Set(name, value); err != nil {
				return fmt.Errorf("add %s: %w", name, err)
			}
			return nil
		},
	}
}

// parseAddArgs resolves the variable name and value from add's arguments.
// A single NAME=VALUE argument is split on the first "=".
func parseAddArgs(args []string) (name, value string, err error) {
	name = args[0]
	if len(args) == 2 {
		value = args[1]
	} else {
		var ok bool
		name, value, ok = strings.Cut(name, "=")
		if !ok {
			return "", "", fmt.Errorf("no value provided for %s (use: add NAME VALUE or add NAME=VALUE)", name)
		}
	}

	if name == "" {
		return "", "", errors.New("variable name is empty")
	}
	return name, value, nil
}
