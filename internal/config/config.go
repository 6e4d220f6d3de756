package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for trackline.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig identifies the remote entity service and the workspace the
// client operates in.
type ServerConfig struct {
	URI       string `mapstructure:"uri"`
	User      string `mapstructure:"user"`
	Space     string `mapstructure:"space"`
	Workspace string `mapstructure:"workspace"`
}

// HistoryConfig locates the local search-history database.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.uri", "")
	v.SetDefault("server.user", "")
	v.SetDefault("server.space", "500")
	v.SetDefault("server.workspace", "1001")

	v.SetDefault("history.path", filepath.Join(homeDir(), ".trackline", "history.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".trackline"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("TRACKLINE")
	v.AutomaticEnv()

	_ = v.BindEnv("server.uri", "TRACKLINE_SERVER_URI")
	_ = v.BindEnv("server.user", "TRACKLINE_SERVER_USER")
	_ = v.BindEnv("server.space", "TRACKLINE_SERVER_SPACE")
	_ = v.BindEnv("server.workspace", "TRACKLINE_SERVER_WORKSPACE")
	_ = v.BindEnv("history.path", "TRACKLINE_HISTORY_PATH")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Missing config file is fine; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that configuration fields are consistent. The server
// uri and user may legitimately be empty before first login; commands
// that need them report the incomplete-credentials error instead.
func (c *Config) Validate() error {
	if c.Server.Space == "" {
		return fmt.Errorf("server.space must not be empty")
	}
	if c.Server.Workspace == "" {
		return fmt.Errorf("server.workspace must not be empty")
	}
	if c.History.Path == "" {
		return fmt.Errorf("history.path must not be empty")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
