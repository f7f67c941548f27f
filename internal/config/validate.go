package config

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

var (
	validSignals       = []string{"content", "metadata"}
	validLogLevels     = []string{"debug", "info", "warn", "warning", "error"}
	validExportFormats = []string{"csv", "tsv", "markdown", "html"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateExport()
}

func (c *Config) validateScan() error {
	if len(c.Scan.Signals) == 0 {
		return errors.New("scan.signals must name at least one of content, metadata")
	}
	for _, s := range c.Scan.Signals {
		if !lo.Contains(validSignals, s) {
			return fmt.Errorf("scan.signals: unknown signal %q", s)
		}
	}
	if c.Scan.Workers > 1024 {
		return errors.New("scan.workers must be at most 1024")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !lo.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateExport() error {
	if !lo.Contains(validExportFormats, c.Export.Format) {
		return fmt.Errorf("export.format: unsupported value %q", c.Export.Format)
	}
	if c.Export.SimilarThreshold < 0 || c.Export.SimilarThreshold > 1 {
		return errors.New("export.similar_threshold must be between 0 and 1")
	}
	return nil
}
