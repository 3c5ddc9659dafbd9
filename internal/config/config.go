package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultAddress is the listen address of the HTTP API.
	DefaultAddress = ":8080"

	// DefaultMaxBodyBytes limits request bodies accepted by the HTTP API.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultJobs is the number of invoices rendered in parallel by the CLI.
	DefaultJobs = 4
)

// Config holds all configuration for xrechnung.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Generate GenerateConfig `mapstructure:"generate"`
}

// ServerConfig holds HTTP API server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	Debug        bool          `mapstructure:"debug"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GenerateConfig holds settings for batch generation.
type GenerateConfig struct {
	Jobs      int    `mapstructure:"jobs"`
	OutputDir string `mapstructure:"output_dir"`
}

// Load reads configuration from file and environment variables.
// An explicit path takes precedence over the default search locations.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.max_body_bytes", DefaultMaxBodyBytes)
	v.SetDefault("server.debug", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("generate.jobs", DefaultJobs)
	v.SetDefault("generate.output_dir", ".")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("xrechnung")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(homeDir(), ".xrechnung"))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("XRECHNUNG")
	v.AutomaticEnv()

	_ = v.BindEnv("server.address", "XRECHNUNG_SERVER_ADDRESS")
	_ = v.BindEnv("server.debug", "XRECHNUNG_SERVER_DEBUG")
	_ = v.BindEnv("logging.level", "XRECHNUNG_LOGGING_LEVEL")
	_ = v.BindEnv("logging.format", "XRECHNUNG_LOGGING_FORMAT")
	_ = v.BindEnv("generate.jobs", "XRECHNUNG_GENERATE_JOBS")
	_ = v.BindEnv("generate.output_dir", "XRECHNUNG_GENERATE_OUTPUT_DIR")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
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

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("server timeouts must be >= 0")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be greater than 0")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	if c.Generate.Jobs <= 0 {
		return fmt.Errorf("generate.jobs must be greater than 0")
	}
	if c.Generate.OutputDir == "" {
		return fmt.Errorf("generate.output_dir must not be empty")
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
