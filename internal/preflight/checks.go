package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"fluxforge/internal/config"
	"fluxforge/internal/deps"
	"fluxforge/internal/export"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckExportTree verifies the export base directory is usable and reports
// which category folders already exist. Missing category folders are not a
// failure: they are created on first use.
func CheckExportTree(settings export.Settings) Result {
	const name = "Export directory"
	base := CheckDirectoryAccess(name, settings.BaseDir)
	if !base.Passed {
		return base
	}
	root := settings.Root()
	missing := 0
	for _, category := range export.Categories() {
		if info, err := os.Stat(filepath.Join(root, category.Dir())); err != nil || !info.IsDir() {
			missing++
		}
	}
	if missing > 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d category folders pending)", root, missing)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (ready)", root)}
}

// CheckSystemDeps evaluates the external executables for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for GIF conversion",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Used for video info (defaults are reported when missing)",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}
