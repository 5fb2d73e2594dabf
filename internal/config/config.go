package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the server and CLI configuration.
type Config struct {
	Addr        string   `mapstructure:"addr" yaml:"addr"`
	MaxUploadMB int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	PreviewRows int      `mapstructure:"preview_rows" yaml:"preview_rows"`
	PageSize    int      `mapstructure:"page_size" yaml:"page_size"`
	LogLevel    string   `mapstructure:"log_level" yaml:"log_level"`
	LogFormat   string   `mapstructure:"log_format" yaml:"log_format"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	TopN        int      `mapstructure:"top_n" yaml:"top_n"`

	// Rendered chart size in pixels
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:        ":8080",
		MaxUploadMB: 32,
		PreviewRows: 10,
		PageSize:    100,
		LogLevel:    "info",
		LogFormat:   "json",
		CORSOrigins: []string{"*"},
		TopN:        5,
		ChartWidth:  800,
		ChartHeight: 400,
	}
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (FLEETDASH_*) > config file > defaults. Without cfgFile,
// fleetdash.yaml is looked up in the working directory and ~/.fleetdash and
// may be absent.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FLEETDASH")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("addr", d.Addr)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)
	v.SetDefault("preview_rows", d.PreviewRows)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("cors_origins", d.CORSOrigins)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".fleetdash"))
		}
		v.SetConfigName("fleetdash")
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("config: addr is empty")
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("config: max_upload_mb must be positive, got %d", c.MaxUploadMB)
	case c.PageSize <= 0:
		return fmt.Errorf("config: page_size must be positive, got %d", c.PageSize)
	case c.LogFormat != "json" && c.LogFormat != "console":
		return fmt.Errorf("config: log_format must be json or console, got %q", c.LogFormat)
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}
