package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"fluxforge/internal/config"
	"fluxforge/internal/export"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DOCUMENTS_DIR", "")
	return home
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	home := isolateHome(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(home, ".config", "fluxforge", "config.toml"); resolved != want {
		t.Fatalf("resolved path = %q, want %q", resolved, want)
	}
	if want := filepath.Join(home, "Documents"); cfg.Export.BaseDir != want {
		t.Fatalf("base dir = %q, want %q", cfg.Export.BaseDir, want)
	}
	if cfg.Export.RootName != "FluxForge" || !cfg.Export.DateFolders {
		t.Fatalf("unexpected export defaults: %+v", cfg.Export)
	}
	if cfg.Appearance.Theme != "dark" {
		t.Fatalf("theme = %q", cfg.Appearance.Theme)
	}
	if cfg.PDF.DefaultDPI != 150 {
		t.Fatalf("dpi = %d", cfg.PDF.DefaultDPI)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected tools: %+v", cfg.Tools)
	}
	if want := filepath.Join(home, ".local", "share", "fluxforge", "history.db"); cfg.History.Path != want {
		t.Fatalf("history path = %q, want %q", cfg.History.Path, want)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
}

func TestLoadUsesXDGDocumentsDir(t *testing.T) {
	isolateHome(t)
	docs := t.TempDir()
	t.Setenv("XDG_DOCUMENTS_DIR", docs)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Export.BaseDir != docs {
		t.Fatalf("base dir = %q, want %q", cfg.Export.BaseDir, docs)
	}
}

func TestLoadCustomFileExpandsPaths(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[export]
base_dir = "~/exports"
root_name = "  Out  "
date_folders = false

[appearance]
theme = "LIGHT"

[cloud_sync]
folder = "~/Dropbox"

[logging]
format = "JSON"
level = "Debug"
dir = "~/logs"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Export.BaseDir != filepath.Join(home, "exports") {
		t.Fatalf("base dir = %q", cfg.Export.BaseDir)
	}
	if cfg.Export.RootName != "Out" || cfg.Export.DateFolders {
		t.Fatalf("unexpected export section: %+v", cfg.Export)
	}
	if cfg.Appearance.Theme != "light" {
		t.Fatalf("theme = %q", cfg.Appearance.Theme)
	}
	if cfg.CloudSync.Folder != filepath.Join(home, "Dropbox") {
		t.Fatalf("cloud folder = %q", cfg.CloudSync.Folder)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Logging.Dir != filepath.Join(home, "logs") {
		t.Fatalf("log dir = %q", cfg.Logging.Dir)
	}

	settings := cfg.ExportSettings()
	want := export.Settings{BaseDir: filepath.Join(home, "exports"), RootName: "Out"}
	if settings != want {
		t.Fatalf("ExportSettings = %+v, want %+v", settings, want)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolateHome(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"theme", "[appearance]\ntheme = \"neon\"\n", "appearance.theme"},
		{"dpi", "[pdf]\ndefault_dpi = 0\n", "pdf.default_dpi"},
		{"log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"log level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"root name", "[export]\nroot_name = \"a/b\"\n", "export.root_name"},
		{"syntax", "[export\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := config.Default()
	cfg.Export.BaseDir = t.TempDir()
	cfg.Appearance.Theme = "light"
	cfg.PDF.DefaultDPI = 300
	cfg.CloudSync.Folder = t.TempDir()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected saved file to exist")
	}
	if loaded.Export != cfg.Export || loaded.Appearance != cfg.Appearance || loaded.PDF != cfg.PDF || loaded.CloudSync != cfg.CloudSync {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "config.toml" && entry.Name() != "config.toml.lock" {
			t.Fatalf("unexpected residue %q", entry.Name())
		}
	}
}

func TestSaveConcurrentWritersLeaveValidFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(dpi int) {
			defer wg.Done()
			cfg := config.Default()
			cfg.Export.BaseDir = "/tmp/base"
			cfg.PDF.DefaultDPI = dpi
			if err := cfg.Save(path); err != nil {
				t.Errorf("Save: %v", err)
			}
		}(100 + i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved file is not valid TOML: %v", err)
	}
	if decoded.PDF.DefaultDPI < 100 || decoded.PDF.DefaultDPI > 107 {
		t.Fatalf("unexpected dpi %d", decoded.PDF.DefaultDPI)
	}
}

func TestBootstrapCreatesFileAndTree(t *testing.T) {
	home := isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, created, err := config.Bootstrap(path)
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if !created || resolved != path {
		t.Fatalf("created=%v resolved=%q", created, resolved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	root := filepath.Join(home, "Documents", "FluxForge")
	for _, category := range export.Categories() {
		info, err := os.Stat(filepath.Join(root, category.Dir()))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected category folder %s: %v", category, err)
		}
	}
	if cfg.Export.BaseDir != filepath.Join(home, "Documents") {
		t.Fatalf("base dir = %q", cfg.Export.BaseDir)
	}

	_, _, created, err = config.Bootstrap(path)
	if err != nil {
		t.Fatalf("second Bootstrap returned error: %v", err)
	}
	if created {
		t.Fatal("expected second bootstrap to reuse the existing file")
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Export.RootName != "FluxForge" {
		t.Fatalf("root name = %q", cfg.Export.RootName)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := isolateHome(t)
	got, err := config.ExpandPath("~/x/y")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "x", "y") {
		t.Fatalf("ExpandPath = %q", got)
	}
}
