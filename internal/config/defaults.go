package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultRootName    = "FluxForge"
	defaultTheme       = "dark"
	defaultDPI         = 150
	defaultFFmpeg      = "ffmpeg"
	defaultFFprobe     = "ffprobe"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultHistoryPath = "~/.local/share/fluxforge/history.db"
)

// Default returns a Config populated with repository defaults. The export
// base directory is left empty; Load fills it from the Documents directory
// when the file does not set one.
func Default() Config {
	return Config{
		Export: Export{
			RootName:    defaultRootName,
			DateFolders: true,
		},
		Appearance: Appearance{
			Theme: defaultTheme,
		},
		PDF: PDF{
			DefaultDPI: defaultDPI,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}

// DocumentsDir returns the user's documents directory: XDG_DOCUMENTS_DIR when
// set, otherwise ~/Documents.
func DocumentsDir() (string, error) {
	if dir, ok := os.LookupEnv("XDG_DOCUMENTS_DIR"); ok && strings.TrimSpace(dir) != "" {
		return expandPath(strings.TrimSpace(dir))
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Documents"), nil
}
