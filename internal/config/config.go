package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the docrules CLI configuration.
// Values are populated from .docrules.yaml, DOCRULES_* env vars, and CLI flags.
type Config struct {
	// Definitions is a directory of YAML/JSON/TOML document type definitions
	// registered in addition to the built-in content model.
	Definitions string `mapstructure:"definitions"`
	// SkipBuiltins disables the built-in "project" and "photo" types.
	SkipBuiltins bool `mapstructure:"skip_builtins"`
	// Output is the result format: text, json or yaml.
	Output string `mapstructure:"output"`
	// StripMarkup removes HTML from preview text before printing.
	StripMarkup bool `mapstructure:"strip_markup"`
	// Debounce is how long watch waits for writes to settle.
	Debounce time.Duration `mapstructure:"debounce"`
	// Token pins the private-link key generator to a fixed value.
	Token   string `mapstructure:"token"`
	Verbose bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("definitions", "")
	viper.SetDefault("skip_builtins", false)
	viper.SetDefault("output", "text")
	viper.SetDefault("strip_markup", false)
	viper.SetDefault("debounce", 100*time.Millisecond)
	viper.SetDefault("token", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	switch cfg.Output {
	case "text", "json", "yaml":
	default:
		return Config{}, fmt.Errorf("config: unsupported output %q (want text, json or yaml)", cfg.Output)
	}
	if cfg.Debounce <= 0 {
		return Config{}, fmt.Errorf("config: debounce must be positive, got %s", cfg.Debounce)
	}
	if cfg.SkipBuiltins && cfg.Definitions == "" {
		return Config{}, fmt.Errorf("config: skip_builtins requires a definitions directory")
	}
	return cfg, nil
}
