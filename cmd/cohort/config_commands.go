package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cohort/internal/config"
	"cohort/internal/rules"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create sample configuration and rule files",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)

			rulesPath := filepath.Join(dir, "rules.toml")
			if _, err := os.Stat(rulesPath); err == nil {
				fmt.Fprintf(out, "Rule file already exists at %s; left untouched\n", rulesPath)
			} else if os.IsNotExist(err) {
				if err := rules.CreateSample(rulesPath); err != nil {
					return fmt.Errorf("create sample rules: %w", err)
				}
				fmt.Fprintf(out, "Wrote sample rules to %s\n", rulesPath)
			} else {
				return fmt.Errorf("check rules path: %w", err)
			}

			fmt.Fprintln(out, "Edit both files to match your source tree before running cohort.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and rule files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}

			if _, err := os.Stat(cfg.Paths.RulesPath); os.IsNotExist(err) {
				fmt.Fprintf(out, "Rule file not found at %s (run `cohort config init`)\n", cfg.Paths.RulesPath)
			} else {
				set, err := rules.Load(cfg.Paths.RulesPath)
				if err != nil {
					return fmt.Errorf("load rules: %w", err)
				}
				fmt.Fprintf(out, "Rules path: %s (%d categories)\n", cfg.Paths.RulesPath, set.Len())
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
