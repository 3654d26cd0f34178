// Package config is the daemon's configuration surface: a YAML file (or
// none at all — every field has a usable default) with MATCHBOOK_*
// environment variable overrides, following the shape the rest of the
// retrieval pack's daemon-style repos use viper for.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level daemon configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Symbols []string      `mapstructure:"symbols"`
}

// ServerConfig controls the TCP listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Workers int    `mapstructure:"workers"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Workers defaults to 1: market.Market has no internal synchronization
// (its order index and each book's resting state are plain maps/trees),
// so concurrent connections serviced by more than one worker can race on
// it. Cross-connection concurrency is out of scope for this engine;
// operators who raise server.workers are responsible for serializing
// access to the Market themselves.
func defaults() Config {
	return Config{
		Server:  ServerConfig{Address: ":7777", Workers: 1},
		Logging: LoggingConfig{Level: "info"},
		Symbols: []string{"DEFAULT"},
	}
}

// Load reads path (if non-empty) over top of the defaults, applying
// MATCHBOOK_* environment overrides last. A named file that cannot be read
// is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	cfg := defaults()

	v.SetDefault("server.address", cfg.Server.Address)
	v.SetDefault("server.workers", cfg.Server.Workers)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("symbols", cfg.Symbols)

	v.SetEnvPrefix("MATCHBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the fields a running daemon can't do without.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}
	if c.Server.Workers <= 0 {
		return fmt.Errorf("server.workers must be > 0")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("at least one symbol must be configured")
	}
	return nil
}
