// Package testsupport provides shared fixtures for cohort tests: temp-dir
// seeded configurations and minimal DICOM files with chosen header tags.
package testsupport

import (
	"path/filepath"
	"testing"

	"cohort/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "source")
	cfg.Paths.OutputDir = filepath.Join(base, "bundles")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.RulesPath = filepath.Join(base, "rules.toml")
	cfg.Scan.MinSeriesFiles = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMinSeriesFiles overrides the candidate sibling-count constraint.
func WithMinSeriesFiles(n int) ConfigOption {
	return func(c *config.Config) {
		c.Scan.MinSeriesFiles = n
	}
}

// WithFileSuffixes sets the accepted file suffixes.
func WithFileSuffixes(suffixes ...string) ConfigOption {
	return func(c *config.Config) {
		c.Scan.FileSuffixes = suffixes
	}
}

// WithExcludedParts sets the excluded path substrings.
func WithExcludedParts(parts ...string) ConfigOption {
	return func(c *config.Config) {
		c.Scan.ExcludePathParts = parts
	}
}
