package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/unrss/envdoter/internal/config"
)

// ConfigOutput is the JSON representation of envdoter configuration.
type ConfigOutput struct {
	ConfigFile string `json:"config_file,omitempty"`
	DBPath     string `json:"db_path"`
	EnvFile    string `json:"env_file"`
	LogLevel   string `json:"log_level"`
}

func newConfigCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Long: `Display the current envdoter configuration including values from
the config file, environment variables, and defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runConfig(w io.Writer, jsonOutput bool) error {
	dbPath, err := cfg.GetDBPath()
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}

	output := ConfigOutput{
		ConfigFile: config.ConfigFile(),
		DBPath:     dbPath,
		EnvFile:    cfg.GetEnvFile(),
		LogLevel:   cfg.LogLevel,
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	return outputConfigHuman(w, output)
}

func outputConfigHuman(w io.Writer, output ConfigOutput) error {
	c := newColorizer(w)

	fmt.Fprintf(w, "%s\n\n", c.bold("envdoter Configuration"))

	// Config file
	if output.ConfigFile != "" {
		fmt.Fprintf(w, "  %s %s\n", c.label("Config file:"), output.ConfigFile)
	} else {
		fmt.Fprintf(w, "  %s %s\n", c.label("Config file:"), c.dim("(none)"))
	}

	fmt.Fprintf(w, "  %s %s\n", c.label("Database:"), output.DBPath)
	fmt.Fprintf(w, "  %s %s\n", c.label("Env file:"), output.EnvFile)
	fmt.Fprintf(w, "  %s %s\n", c.label("Log level:"), output.LogLevel)

	return nil
}
