package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeExport(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeAppearance()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeExport() error {
	c.Export.RootName = strings.TrimSpace(c.Export.RootName)
	if c.Export.RootName == "" {
		c.Export.RootName = defaultRootName
	}

	base := strings.TrimSpace(c.Export.BaseDir)
	if base == "" {
		docs, err := DocumentsDir()
		if err != nil {
			return fmt.Errorf("export.base_dir: %w", err)
		}
		base = docs
	}
	var err error
	if c.Export.BaseDir, err = expandPath(base); err != nil {
		return fmt.Errorf("export.base_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if folder := strings.TrimSpace(c.CloudSync.Folder); folder != "" {
		if c.CloudSync.Folder, err = expandPath(folder); err != nil {
			return fmt.Errorf("cloud_sync.folder: %w", err)
		}
	} else {
		c.CloudSync.Folder = ""
	}
	if dir := strings.TrimSpace(c.Logging.Dir); dir != "" {
		if c.Logging.Dir, err = expandPath(dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	} else {
		c.Logging.Dir = ""
	}
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath
	}
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
}

func (c *Config) normalizeAppearance() {
	c.Appearance.Theme = strings.ToLower(strings.TrimSpace(c.Appearance.Theme))
	if c.Appearance.Theme == "" {
		c.Appearance.Theme = defaultTheme
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
