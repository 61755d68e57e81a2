package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDedupe(); err != nil {
		return err
	}
	if err := c.validateRename(); err != nil {
		return err
	}
	if err := c.validateScaffold(); err != nil {
		return err
	}
	return c.validateMetrics()
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func (c *Config) validateDedupe() error {
	if strings.ContainsAny(c.Dedupe.Marker, `/\`) {
		return errors.New("dedupe.marker must not contain path separators")
	}
	return nil
}

func (c *Config) validateRename() error {
	if strings.ContainsAny(c.Rename.Prefix, `/\`) {
		return errors.New("rename.prefix must not contain path separators")
	}
	if strings.ContainsAny(c.Rename.Extension, `/\`) {
		return errors.New("rename.extension must not contain path separators")
	}
	return nil
}

func (c *Config) validateScaffold() error {
	for _, name := range c.Scaffold.Subfolders {
		if err := validateFolderName(name); err != nil {
			return fmt.Errorf("scaffold.subfolders: %w", err)
		}
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Textfile == "" {
		return nil
	}
	if filepath.Ext(c.Metrics.Textfile) != ".prom" {
		return errors.New("metrics.textfile must end in .prom for the node_exporter textfile collector")
	}
	return nil
}

// validateFolderName accepts a single relative path segment.
func validateFolderName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid folder name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("folder name %q must not contain path separators", name)
	}
	return nil
}
