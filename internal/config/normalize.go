package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMetadataCache(); err != nil {
		return err
	}
	if err := c.normalizeTables(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceDir == "" {
		if value, ok := os.LookupEnv("COHORT_SOURCE_DIR"); ok {
			c.Paths.SourceDir = value
		}
	}
	if c.Paths.SourceDir, err = expandPath(c.Paths.SourceDir); err != nil {
		return fmt.Errorf("paths.source_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.RulesPath, err = expandPath(c.Paths.RulesPath); err != nil {
		return fmt.Errorf("paths.rules_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	suffixes := make([]string, 0, len(c.Scan.FileSuffixes))
	for _, suffix := range c.Scan.FileSuffixes {
		suffix = strings.TrimSpace(suffix)
		if suffix == "" {
			continue
		}
		suffixes = append(suffixes, suffix)
	}
	c.Scan.FileSuffixes = suffixes

	parts := make([]string, 0, len(c.Scan.ExcludePathParts))
	for _, part := range c.Scan.ExcludePathParts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	c.Scan.ExcludePathParts = parts

	c.Scan.IdentityTag = strings.TrimSpace(c.Scan.IdentityTag)
	if c.Scan.IdentityTag == "" {
		c.Scan.IdentityTag = defaultIdentityTag
	}
}

func (c *Config) normalizeMetadataCache() error {
	if !c.MetadataCache.Enabled {
		return nil
	}
	if strings.TrimSpace(c.MetadataCache.Path) == "" {
		c.MetadataCache.Path = defaultMetadataCachePath()
	}
	var err error
	if c.MetadataCache.Path, err = expandPath(c.MetadataCache.Path); err != nil {
		return fmt.Errorf("metadata_cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTables() error {
	var err error
	if strings.TrimSpace(c.Tables.MetadataSrc) != "" {
		if c.Tables.MetadataSrc, err = expandPath(c.Tables.MetadataSrc); err != nil {
			return fmt.Errorf("tables.metadata_src: %w", err)
		}
	}
	c.Tables.Experiment = strings.TrimSpace(c.Tables.Experiment)
	if c.Tables.Experiment == "" {
		c.Tables.Experiment = defaultExperiment
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
