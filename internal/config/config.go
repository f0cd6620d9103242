// Package config resolves bridge configuration from flags and environment
// variables using Viper, following the precedence defaults < env < flags.
package config

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the resolved runtime configuration for the bridge process.
type Config struct {
	Port       int    `mapstructure:"port"`
	Token      string `mapstructure:"token"`
	CaptureDir string `mapstructure:"capture_dir"`
	LogLevel   string `mapstructure:"log_level"`
}

// Load builds a Viper instance bound to the given flag set, applies
// defaults, binds the STUDIO_BRIDGE_ environment prefix, and unmarshals
// into a Config. A missing token is generated, and printed to stderr, so
// every run is authenticated.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix("STUDIO_BRIDGE")
	v.AutomaticEnv()

	v.SetDefault("port", 3300)
	v.SetDefault("token", "")
	v.SetDefault("capture_dir", "")
	v.SetDefault("log_level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Token == "" {
		cfg.Token = uuid.NewString()
		fmt.Fprintf(os.Stderr, "[studio-bridge] no token configured; generated bearer token: %s\n", cfg.Token)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the resolved configuration is usable.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}
	return nil
}
