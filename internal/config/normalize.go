package config

import (
	"strings"

	"github.com/samber/lo"
)

func (c *Config) normalize() {
	c.normalizeScan()
	c.normalizeLogging()
	c.normalizeExport()
}

func (c *Config) normalizeScan() {
	lower := func(v string, _ int) (string, bool) {
		v = strings.ToLower(strings.TrimSpace(v))
		return v, v != ""
	}
	c.Scan.Signals = lo.Uniq(lo.FilterMap(c.Scan.Signals, lower))
	c.Scan.Include = lo.Uniq(lo.FilterMap(c.Scan.Include, lower))
	c.Scan.Exclude = lo.Uniq(lo.FilterMap(c.Scan.Exclude, lower))
	if c.Scan.Workers < 0 {
		c.Scan.Workers = 0
	}
	if c.Scan.FileTimeoutSeconds < 0 {
		c.Scan.FileTimeoutSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console", "text":
		c.Logging.Format = defaultLogFormat
	case "json":
	default:
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeExport() {
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	if c.Export.Format == "" {
		c.Export.Format = defaultExportFormat
	}
	if c.Export.SimilarThreshold == 0 {
		c.Export.SimilarThreshold = defaultSimilarThreshold
	}
}
