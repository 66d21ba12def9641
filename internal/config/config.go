package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SourceDir string `toml:"source_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	RulesPath string `toml:"rules_path"`
}

// Scan contains configuration for candidate selection during the tree walk.
type Scan struct {
	MinSeriesFiles   int      `toml:"min_series_files"`
	FileSuffixes     []string `toml:"file_suffixes"`
	ExcludePathParts []string `toml:"exclude_path_parts"`
	IdentityTag      string   `toml:"identity_tag"`
}

// Bundle contains configuration for the series bundling sink.
type Bundle struct {
	OverwriteExisting bool `toml:"overwrite_existing"`
	MinFreeMiB        int  `toml:"min_free_mib"`
	WriteManifest     bool `toml:"write_manifest"`
}

// MetadataCache contains configuration for the parsed-tag cache.
type MetadataCache struct {
	Enabled bool   `toml:"enabled"` // Default: false
	Path    string `toml:"path"`    // Default: ~/.cache/cohort/metadata.db
}

// Tables contains configuration for the spreadsheet utilities.
type Tables struct {
	Segments     []string `toml:"segments"`
	Dims         []string `toml:"dims"`
	Axes         []string `toml:"axes"`
	Orientations []string `toml:"orientations"`
	Metrics      []string `toml:"metrics"`
	MetadataSrc  string   `toml:"metadata_src"`
	MetadataCols []string `toml:"metadata_cols"`
	Experiment   string   `toml:"experiment"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for cohort.
//
// Configuration sections by subsystem:
//   - Paths: source/output/log directories and the rule file location
//   - Scan: candidate filter constraints and the case identity tag
//   - Bundle: series bundling sink behaviour
//   - MetadataCache: parsed-tag cache backed by SQLite
//   - Tables: spreadsheet cleaning/merging parameters
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Scan          Scan          `toml:"scan"`
	Bundle        Bundle        `toml:"bundle"`
	MetadataCache MetadataCache `toml:"metadata_cache"`
	Tables        Tables        `toml:"tables"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cohort/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/cohort/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cohort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for a classification run.
// OutputDir is created on a best-effort basis so read-only operations can run
// when external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	if c.MetadataCache.Enabled && strings.TrimSpace(c.MetadataCache.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.MetadataCache.Path), 0o755); err != nil {
			return fmt.Errorf("create metadata cache directory %q: %w", filepath.Dir(c.MetadataCache.Path), err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultMetadataCachePath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "cohort", "metadata.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/cohort/metadata.db"
	}
	return filepath.Join(home, ".cache", "cohort", "metadata.db")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
