package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateBundle(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.SourceDir == "" {
		return errors.New("paths.source_dir must be set (or export COHORT_SOURCE_DIR)")
	}
	if c.Paths.RulesPath == "" {
		return errors.New("paths.rules_path must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.MinSeriesFiles < 0 {
		return errors.New("scan.min_series_files must be >= 0")
	}
	return nil
}

func (c *Config) validateBundle() error {
	if c.Bundle.MinFreeMiB < 0 {
		return errors.New("bundle.min_free_mib must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
