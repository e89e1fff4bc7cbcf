package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SESH_DATA_DIR.
	EnvPrefix = "SESH"

	dirName  = ".sesh"
	fileName = "sesh.json"

	tmpAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader. An empty path means
// ~/.sesh/sesh.json.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// Load reads the config file, if present, and applies SESH_* environment
// overrides on top of the defaults.
func (l *Loader) Load() (*Config, error) {
	configPath, err := l.path()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := resolvePaths(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Save writes cfg to the config file atomically.
func (l *Loader) Save(cfg *Config) error {
	configPath, err := l.path()
	if err != nil {
		return err
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("version", cfg.Version)
	v.Set("data_dir", cfg.DataDir)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.console", cfg.Logging.Console)
	v.Set("logging.pretty", cfg.Logging.Pretty)
	v.Set("logging.max_size", cfg.Logging.MaxSize)
	v.Set("logging.max_age", cfg.Logging.MaxAge)
	v.Set("logging.compress", cfg.Logging.Compress)
	v.Set("ledger.migrations_dir", cfg.Ledger.MigrationsDir)
	v.Set("ledger.busy_timeout_ms", cfg.Ledger.BusyTimeoutMS)
	v.Set("metrics.textfile", cfg.Metrics.Textfile)

	id, err := gonanoid.Generate(tmpAlphabet, 10)
	if err != nil {
		return fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.json", strings.TrimSuffix(filepath.Base(configPath), ".json"), id))

	if err := v.WriteConfigAs(tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	p, err := l.path()
	if err != nil {
		return ""
	}
	return p
}

func (l *Loader) path() (string, error) {
	if l.configPath != "" {
		return ExpandHome(l.configPath)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

// setDefaults registers every key so AutomaticEnv overrides reach Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.console", d.Logging.Console)
	v.SetDefault("logging.pretty", d.Logging.Pretty)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.compress", d.Logging.Compress)
	v.SetDefault("ledger.migrations_dir", d.Ledger.MigrationsDir)
	v.SetDefault("ledger.busy_timeout_ms", d.Ledger.BusyTimeoutMS)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}

func resolvePaths(cfg *Config) error {
	var err error
	if cfg.DataDir == "" {
		if cfg.DataDir, err = DefaultDataDir(); err != nil {
			return err
		}
	}
	if cfg.DataDir, err = ExpandHome(cfg.DataDir); err != nil {
		return err
	}
	if cfg.Logging.File, err = ExpandHome(cfg.Logging.File); err != nil {
		return err
	}
	if cfg.Ledger.MigrationsDir, err = ExpandHome(cfg.Ledger.MigrationsDir); err != nil {
		return err
	}
	if cfg.Metrics.Textfile, err = ExpandHome(cfg.Metrics.Textfile); err != nil {
		return err
	}
	return nil
}

// DefaultDataDir returns ~/.sesh.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}
