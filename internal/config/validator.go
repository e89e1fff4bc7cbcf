package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateVersion checks that a config file version is one this build reads.
func (v *Validator) ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("config version cannot be empty")
	}

	ver, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid config version %s: %w", version, err)
	}

	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint %s: %w", SupportedVersions, err)
	}

	if !c.Check(ver) {
		return fmt.Errorf("config version %s is not supported (want %s)", version, SupportedVersions)
	}

	return nil
}

// ValidatePath validates a directory setting. Paths must be absolute once
// ~ is expanded.
func (v *Validator) ValidatePath(field, path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%s cannot be blank", field)
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("%s contains a NUL byte", field)
	}
	expanded, err := ExpandHome(path)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if !filepath.IsAbs(expanded) {
		return fmt.Errorf("%s must be an absolute path, got %s", field, path)
	}
	return nil
}

// ValidateBusyTimeout validates the SQLite busy timeout in milliseconds.
func (v *Validator) ValidateBusyTimeout(ms int) error {
	if ms < 0 {
		return fmt.Errorf("ledger.busy_timeout_ms must not be negative, got %d", ms)
	}
	if ms > 60000 {
		return fmt.Errorf("ledger.busy_timeout_ms too large (max 60000), got %d", ms)
	}
	return nil
}
