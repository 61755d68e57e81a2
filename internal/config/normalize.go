package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSort(); err != nil {
		return err
	}
	c.normalizeDedupe()
	c.normalizeRename()
	c.normalizeScaffold()
	c.normalizeLogging()
	return c.normalizeMetrics()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
			return fmt.Errorf("paths.log_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LockDir) == "" {
		c.Paths.LockDir = defaultLockDir()
	}
	if c.Paths.LockDir, err = expandPath(strings.TrimSpace(c.Paths.LockDir)); err != nil {
		return fmt.Errorf("paths.lock_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSort() error {
	c.Sort.Vendors = trimList(c.Sort.Vendors)
	if strings.TrimSpace(c.Sort.RulesFile) == "" {
		c.Sort.RulesFile = ""
		return nil
	}
	var err error
	if c.Sort.RulesFile, err = expandPath(strings.TrimSpace(c.Sort.RulesFile)); err != nil {
		return fmt.Errorf("sort.rules_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeDedupe() {
	// The marker is matched verbatim, so surrounding spaces are kept unless
	// the value is blank.
	if strings.TrimSpace(c.Dedupe.Marker) == "" {
		c.Dedupe.Marker = defaultMarker
	}
}

func (c *Config) normalizeRename() {
	c.Rename.Prefix = strings.TrimSpace(c.Rename.Prefix)
	c.Rename.Extension = strings.TrimSpace(c.Rename.Extension)
}

func (c *Config) normalizeScaffold() {
	c.Scaffold.Subfolders = trimList(c.Scaffold.Subfolders)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeMetrics() error {
	if strings.TrimSpace(c.Metrics.Textfile) == "" {
		c.Metrics.Textfile = ""
		return nil
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

// trimList drops blank entries and surrounding whitespace while keeping
// order.
func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
