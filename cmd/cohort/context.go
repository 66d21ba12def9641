package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cohort/internal/config"
	"cohort/internal/dicomtag"
	"cohort/internal/logging"
	"cohort/internal/metacache"
	"cohort/internal/rules"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// loadRules reads the rule set referenced by the configuration.
func (c *commandContext) loadRules() (*rules.Set, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return rules.Load(cfg.Paths.RulesPath)
}

// tagReader builds the metadata reader, wrapped with the SQLite cache when
// enabled. The returned closer is a no-op for the plain reader.
func (c *commandContext) tagReader(logger *slog.Logger) (dicomtag.Reader, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	reader := dicomtag.NewReader()
	if !cfg.MetadataCache.Enabled {
		return reader, func() {}, nil
	}
	cache, err := metacache.Open(cfg.MetadataCache.Path, logger)
	if err != nil {
		return nil, nil, err
	}
	return metacache.NewReader(reader, cache, logger), func() { _ = cache.Close() }, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
