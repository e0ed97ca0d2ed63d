// Package config manages envdoter configuration from files and environment.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds envdoter configuration.
type Config struct {
	// DBPath is the variable database file. Empty means <home>/.envdoter/db.
	DBPath string `mapstructure:"db_path"`

	// EnvFile is the .env path used by init and sort when --path is not given.
	EnvFile string `mapstructure:"env_file"`

	// LogLevel is the zap level for diagnostics on stderr.
	LogLevel string `mapstructure:"log_level"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		DBPath:   "",
		EnvFile:  ".env",
		LogLevel: "warn",
	}
}

// Load reads configuration from file and environment variables.
// Configuration is loaded from (in order of precedence):
//  1. Environment variables (ENVDOTER_*)
//  2. Config file ($XDG_CONFIG_HOME/envdoter/config.toml or ~/.config/envdoter/config.toml)
//  3. Default values
func Load() (*Config, error) {
	v := newViper()

	v.SetDefault("db_path", "")
	v.SetDefault("env_file", ".env")
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix("ENVDOTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore error if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that was loaded, or empty if none.
func ConfigFile() string {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return v.ConfigFileUsed()
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")

	// Pick up XDG_CONFIG_HOME changes made after process start.
	xdg.Reload()
	v.AddConfigPath(filepath.Join(xdg.ConfigHome, "envdoter"))

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "envdoter"))
	}

	return v
}

// GetDBPath returns the variable database path.
// Returns DBPath if set, otherwise <home>/.envdoter/db.
func (c *Config) GetDBPath() (string, error) {
	if c != nil && c.DBPath != "" {
		return c.DBPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".envdoter", "db"), nil
}

// GetEnvFile returns the default .env path.
func (c *Config) GetEnvFile() string {
	if c == nil || c.EnvFile == "" {
		return ".env"
	}
	return c.EnvFile
}
