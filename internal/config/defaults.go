package config

const (
	defaultSourceDir      = "~/data/cohort/source"
	defaultOutputDir      = "~/data/cohort/bundles"
	defaultLogDir         = "~/.local/share/cohort/logs"
	defaultRulesPath      = "~/.config/cohort/rules.toml"
	defaultIdentityTag    = "PatientName"
	defaultMinSeriesFiles = 1
	defaultBundleFreeMiB  = 512
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultExperiment     = "unnamed_experiment"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir: defaultSourceDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			RulesPath: defaultRulesPath,
		},
		Scan: Scan{
			MinSeriesFiles:   defaultMinSeriesFiles,
			FileSuffixes:     nil,
			ExcludePathParts: []string{"DICOMDIR"},
			IdentityTag:      defaultIdentityTag,
		},
		Bundle: Bundle{
			OverwriteExisting: false,
			MinFreeMiB:        defaultBundleFreeMiB,
			WriteManifest:     true,
		},
		MetadataCache: MetadataCache{
			Enabled: false,
		},
		Tables: Tables{
			Segments:     []string{"aha", "roi"},
			Dims:         []string{"2d"},
			Axes:         []string{"short_axis", "long_axis"},
			Orientations: []string{"circumf", "radial", "longit"},
			Metrics:      []string{"strain", "strain_rate"},
			Experiment:   defaultExperiment,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
