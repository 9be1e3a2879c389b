package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateAppearance(); err != nil {
		return err
	}
	if c.PDF.DefaultDPI <= 0 {
		return fmt.Errorf("pdf.default_dpi must be positive, got %d", c.PDF.DefaultDPI)
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path is required when history is enabled")
	}
	return nil
}

func (c *Config) validateExport() error {
	if strings.TrimSpace(c.Export.BaseDir) == "" {
		return errors.New("export.base_dir must be set")
	}
	if !filepath.IsAbs(c.Export.BaseDir) {
		return fmt.Errorf("export.base_dir must be absolute, got %q", c.Export.BaseDir)
	}
	name := strings.TrimSpace(c.Export.RootName)
	if name == "" {
		return errors.New("export.root_name must be set")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("export.root_name must be a single folder name, got %q", name)
	}
	return nil
}

func (c *Config) validateAppearance() error {
	switch c.Appearance.Theme {
	case "dark", "light":
		return nil
	default:
		return fmt.Errorf("appearance.theme: unsupported value %q (want dark or light)", c.Appearance.Theme)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
