package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"fluxforge/internal/export"
	"fluxforge/internal/fileutil"
)

// Save writes the configuration to path as TOML. Concurrent writers are
// serialized through an advisory lock next to the file and the content is
// replaced atomically, so readers never observe a partial file.
func (c *Config) Save(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("save config: path is required")
	}
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	lock := flock.New(expanded + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire config lock: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	err = fileutil.WriteAtomic(expanded, 0o644, func(w io.Writer) error {
		encoder := toml.NewEncoder(w)
		encoder.SetIndentTables(true)
		return encoder.Encode(c)
	})
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Bootstrap performs first-run setup. When no configuration file exists at
// path (or the default location when path is empty) the defaults, with the
// export base resolved to the Documents directory, are written there. In both
// cases the export tree with every category folder is created. created
// reports whether a new file was written.
func Bootstrap(path string) (*Config, string, bool, error) {
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		return nil, "", false, err
	}
	if !exists {
		if err := cfg.Save(resolved); err != nil {
			return nil, "", false, err
		}
	}
	if _, err := (export.Resolver{}).EnsureTree(cfg.ExportSettings()); err != nil {
		return nil, "", false, err
	}
	return cfg, resolved, !exists, nil
}
