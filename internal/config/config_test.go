package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Scan.IdentityTag != "PatientName" {
		t.Fatalf("unexpected identity tag %q", cfg.Scan.IdentityTag)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`source_dir = "` + filepath.Join(dir, "src") + `"`,
		`rules_path = "` + filepath.Join(dir, "rules.toml") + `"`,
		"[scan]",
		"min_series_files = 10",
		`file_suffixes = [".dcm", "", "  "]`,
		`exclude_path_parts = ["DICOMDIR", ""]`,
		"[logging]",
		`level = "DEBUG"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: exists=%v path=%s", exists, resolved)
	}
	if cfg.Scan.MinSeriesFiles != 10 {
		t.Fatalf("min_series_files = %d", cfg.Scan.MinSeriesFiles)
	}
	if len(cfg.Scan.FileSuffixes) != 1 || cfg.Scan.FileSuffixes[0] != ".dcm" {
		t.Fatalf("suffixes not normalized: %v", cfg.Scan.FileSuffixes)
	}
	if len(cfg.Scan.ExcludePathParts) != 1 {
		t.Fatalf("exclude parts not normalized: %v", cfg.Scan.ExcludePathParts)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level not lowercased: %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative min series", func(c *Config) { c.Scan.MinSeriesFiles = -1 }},
		{"negative free mib", func(c *Config) { c.Bundle.MinFreeMiB = -5 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "yaml" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidate := cfg
			tc.mutate(&candidate)
			if err := candidate.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(target); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	cfg, _, exists, err := Load(target)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if !exists {
		t.Fatal("sample config not detected")
	}
	if cfg.Scan.MinSeriesFiles != 1 {
		t.Fatalf("sample min_series_files = %d", cfg.Scan.MinSeriesFiles)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/cohort")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "cohort") {
		t.Fatalf("expand = %q", got)
	}
}
