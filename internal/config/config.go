// Package config loads pinvault settings from defaults, an optional
// config file and PINVAULT_* environment variables, in increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const envPrefix = "PINVAULT"

type Config struct {
	Root        string `mapstructure:"root"`
	ExportDir   string `mapstructure:"export_dir"`
	StateFile   string `mapstructure:"state_file"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	PageSize    int    `mapstructure:"page_size"`
	MetricsFile string `mapstructure:"metrics_file"`
	// PIN unlocks without a prompt, for scripts
	PIN string `mapstructure:"pin"`
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".pinvault")

	v.SetDefault("root", filepath.Join(base, "Vault"))
	v.SetDefault("export_dir", filepath.Join(home, "Pictures", "Vault"))
	v.SetDefault("state_file", filepath.Join(base, "pinvault.db"))
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "console")
	v.SetDefault("page_size", 50)
	v.SetDefault("metrics_file", "")
	v.SetDefault("pin", "")
}

// Load reads the configuration. With an empty path, pinvault.{yaml,toml,json}
// is looked up in ~/.config/pinvault and ~/.pinvault; a missing file is
// not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("pinvault")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pinvault"))
			v.AddConfigPath(filepath.Join(home, ".pinvault"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback
func (c Config) Validate() error {
	if c.Root == "" {
		return errors.New("config: root must be set")
	}
	if c.StateFile == "" {
		return errors.New("config: state_file must be set")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("config: page_size must be positive, got %d", c.PageSize)
	}
	return nil
}
