package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is prepended to environment overrides, e.g.
// AUTOMATION_SYNC_AZURE_TOKEN overrides azure.token.
const envPrefix = "AUTOMATION_SYNC"

// AzureConfig holds the connection settings for the Azure DevOps organization.
type AzureConfig struct {
	// OrgURL is the organization or collection URL
	// (e.g., https://dev.azure.com/contoso).
	OrgURL string `mapstructure:"org_url" yaml:"org_url"`

	// Token is a Personal Access Token. When empty, the token stored in the
	// system keyring is used.
	Token string `mapstructure:"token" yaml:"token,omitempty"`
}

// HistoryConfig controls the local sync ledger.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DBPath  string `mapstructure:"db_path" yaml:"db_path"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Tag   string `mapstructure:"tag" yaml:"tag"`
	Color bool   `mapstructure:"color" yaml:"color"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Azure   AzureConfig   `mapstructure:"azure" yaml:"azure"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// configDir returns ~/.config/automation-sync, or "." when the home
// directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "automation-sync")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/automation-sync/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDBPath returns the default location of the sync ledger database.
func DefaultDBPath() string {
	return filepath.Join(configDir(), "history.db")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		History: HistoryConfig{
			Enabled: true,
			DBPath:  DefaultDBPath(),
		},
		Log: LogConfig{
			Tag:   "azure",
			Color: true,
		},
	}
}

// newViper returns a Viper instance with defaults and environment
// overrides registered.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("azure.org_url", "")
	v.SetDefault("azure.token", "")
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.db_path", DefaultDBPath())
	v.SetDefault("log.tag", "azure")
	v.SetDefault("log.color", true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file is not an error: defaults and environment overrides apply.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Log.Tag == "" {
		cfg.Log.Tag = "azure"
	}
	if cfg.History.DBPath == "" {
		cfg.History.DBPath = DefaultDBPath()
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed. The token is never written;
// it belongs in the keyring.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("azure.org_url", cfg.Azure.OrgURL)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.db_path", cfg.History.DBPath)
	v.Set("log.tag", cfg.Log.Tag)
	v.Set("log.color", cfg.Log.Color)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
