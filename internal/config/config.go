package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

// SchemaVersion is the config file format written by this build.
const SchemaVersion = "1.0.0"

// SupportedVersions is the range of config file formats this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// Config represents the sesh configuration
type Config struct {
	// Config file format version
	Version string `json:"version" mapstructure:"version"`

	// Storage root for current.json, store.db and the log file
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Ledger database
	Ledger LedgerConfig `json:"ledger" mapstructure:"ledger"`

	// Metrics export
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string `json:"level" mapstructure:"level"`
	File     string `json:"file" mapstructure:"file"`
	Console  bool   `json:"console" mapstructure:"console"`
	Pretty   bool   `json:"pretty" mapstructure:"pretty"`
	MaxSize  int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge   int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress bool   `json:"compress" mapstructure:"compress"`
}

// LedgerConfig holds ledger database configuration
type LedgerConfig struct {
	// Directory of *.sql migrations replacing the built-in set
	MigrationsDir string `json:"migrations_dir" mapstructure:"migrations_dir"`
	BusyTimeoutMS int    `json:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	// node_exporter textfile path; empty disables the export
	Textfile string `json:"textfile" mapstructure:"textfile"`
}

// BusyTimeout returns the SQLite busy timeout as a duration.
func (c LedgerConfig) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// DefaultConfig returns a config with default values. DataDir and the log
// file are resolved by the Loader.
func DefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Logging: LoggingConfig{
			Level:    "info",
			Console:  false,
			Pretty:   true,
			MaxSize:  10,
			MaxAge:   30,
			Compress: true,
		},
		Ledger: LedgerConfig{
			BusyTimeoutMS: 5000,
		},
	}
}

// LogFile returns the configured log file, defaulting to sesh.log in the
// data directory.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	if c.DataDir == "" {
		return ""
	}
	return filepath.Join(c.DataDir, "sesh.log")
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	v := NewValidator()

	if err := v.ValidateVersion(c.Version); err != nil {
		return err
	}
	if c.DataDir != "" {
		if err := v.ValidatePath("data_dir", c.DataDir); err != nil {
			return err
		}
	}
	if err := v.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Logging.MaxSize < 0 {
		return fmt.Errorf("logging.max_size must not be negative, got %d", c.Logging.MaxSize)
	}
	if c.Logging.MaxAge < 0 {
		return fmt.Errorf("logging.max_age must not be negative, got %d", c.Logging.MaxAge)
	}
	if c.Ledger.MigrationsDir != "" {
		if err := v.ValidatePath("ledger.migrations_dir", c.Ledger.MigrationsDir); err != nil {
			return err
		}
	}
	if err := v.ValidateBusyTimeout(c.Ledger.BusyTimeoutMS); err != nil {
		return err
	}
	if c.Metrics.Textfile != "" {
		if err := v.ValidatePath("metrics.textfile", c.Metrics.Textfile); err != nil {
			return err
		}
	}

	return nil
}
