// ABOUTME: Configuration loader for the vcore-usage CLI
// ABOUTME: Layers flags, VCORE_* environment, .env and an optional YAML file via viper

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/dump"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment variables, e.g. VCORE_CLIENT_ID
const EnvPrefix = "VCORE"

// Output formats
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

type Config struct {
	// Control plane
	Region  string `mapstructure:"region"`
	BaseURL string `mapstructure:"base_url"` // overrides the region URL
	Proxy   string `mapstructure:"proxy"`    // ssh+socks5://user@host:port?private-key=path

	// Connected app credentials
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`

	// Selection (skips the matching prompt when set)
	Org         string   `mapstructure:"org"`
	Envs        []string `mapstructure:"envs"`
	AllEnvs     bool     `mapstructure:"all_envs"`
	Detailed    bool     `mapstructure:"detailed"`
	DetailedSet bool     `mapstructure:"-"`

	// Output and behaviour
	Output         string        `mapstructure:"output"`
	Workers        int           `mapstructure:"workers"`
	Timeout        time.Duration `mapstructure:"timeout"`
	DebugFile      string        `mapstructure:"debug_file"`
	NonInteractive bool          `mapstructure:"non_interactive"`
	NoProgress     bool          `mapstructure:"no_progress"`

	// Logging
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// NewViper returns a viper instance with defaults and environment binding.
// Callers bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("region", "")
	v.SetDefault("base_url", "")
	v.SetDefault("proxy", "")
	v.SetDefault("client_id", "")
	v.SetDefault("client_secret", "")
	v.SetDefault("org", "")
	v.SetDefault("envs", []string{})
	v.SetDefault("all_envs", false)
	// no default so IsSet reports only a flag, env var or file value
	_ = v.BindEnv("detailed")
	v.SetDefault("output", OutputTable)
	v.SetDefault("workers", 1)
	v.SetDefault("timeout", client.DefaultTimeout)
	v.SetDefault("debug_file", dump.DefaultPath)
	v.SetDefault("non_interactive", false)
	v.SetDefault("no_progress", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	return v
}

// Load reads .env, the config file and the environment into a Config.
// An explicit path must exist; the default location is optional.
func Load(v *viper.Viper, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("Ignoring unreadable .env file", "error", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if dir := DefaultConfigDir(); dir != "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.DetailedSet = v.IsSet("detailed")
	cfg.BaseURL = ensureScheme(cfg.BaseURL)
	cfg.Output = strings.ToLower(cfg.Output)
	cfg.Envs = trimList(cfg.Envs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if used := v.ConfigFileUsed(); used != "" {
		slog.Debug("Config file loaded", "path", used)
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late
func (c *Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("output must be one of table, json, yaml, got %q", c.Output)
	}
	if c.Workers < 1 || c.Workers > 64 {
		return fmt.Errorf("workers must be between 1 and 64, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Region != "" {
		if _, err := client.ParseRegion(c.Region); err != nil {
			return err
		}
	}
	if c.AllEnvs && len(c.Envs) > 0 {
		return fmt.Errorf("--all-envs cannot be combined with --env")
	}
	return nil
}

// Credentials returns whatever credentials were configured, possibly partial
func (c *Config) Credentials() client.Credentials {
	return client.Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "vcore-usage")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "vcore-usage")
}

func trimList(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
