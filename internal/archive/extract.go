package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fluxforge/internal/export"
	"fluxforge/internal/fileutil"
	"fluxforge/internal/logging"
	"fluxforge/internal/services"
)

const (
	extractOperation = "extract archive"
	defaultStem      = "extracted"
	zipFlagEncrypted = 0x1
)

type entryPlan struct {
	file   *zip.File
	name   string
	target string
	dir    bool
}

// Extract unpacks sourcePath into <Archives dir>/<source stem>.
//
// The password is accepted for API compatibility only: encrypted ZIP entries
// fail with UnsupportedOrEncrypted whether or not a password is supplied.
// Every entry is validated before the first byte is written, so an archive
// with a single unsafe entry produces no output at all.
func (e *Engine) Extract(ctx context.Context, settings export.Settings, sourcePath, password string) (services.ConvertResult, error) {
	sourcePath = strings.TrimSpace(sourcePath)
	if sourcePath == "" {
		return services.ConvertResult{}, services.Wrap(services.ErrValidation, extractOperation, "", "source path required", nil)
	}

	format, err := FormatFromPath(sourcePath)
	if err != nil {
		return services.ConvertResult{}, services.Wrap(services.ErrUnsupportedFormat, extractOperation, sourcePath, "", err)
	}
	switch format {
	case FormatZip:
	case FormatSevenZip, FormatRar:
		return services.ConvertResult{}, services.Wrap(services.ErrNotImplemented, extractOperation, sourcePath, format.String()+" extraction is not available", nil)
	default:
		return services.ConvertResult{}, services.Wrap(services.ErrUnsupportedFormat, extractOperation, sourcePath, "", nil)
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return services.ConvertResult{}, services.Wrap(services.ErrIO, extractOperation, sourcePath, "stat source", err)
	}
	if info.IsDir() {
		return services.ConvertResult{}, services.Wrap(services.ErrValidation, extractOperation, sourcePath, "source is a directory", nil)
	}

	reader, err := zip.OpenReader(sourcePath)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && reader != nil) {
		if errors.Is(err, zip.ErrFormat) {
			return services.ConvertResult{}, services.Wrap(services.ErrUnsupportedFormat, extractOperation, sourcePath, "not a valid zip archive", err)
		}
		return services.ConvertResult{}, services.Wrap(services.ErrIO, extractOperation, sourcePath, "open archive", err)
	}
	defer reader.Close()

	outputFolder, err := e.resolver.Resolve(settings, export.CategoryArchives)
	if err != nil {
		return services.ConvertResult{}, err
	}
	root := filepath.Join(outputFolder, sourceStem(sourcePath))
	if !fileutil.ResolvesWithin(outputFolder, root) {
		return services.ConvertResult{}, services.Wrap(services.ErrUnsafeEntry, extractOperation, root, "extraction directory resolves outside the output folder", nil)
	}

	plans, encrypted, err := planEntries(reader.File, root)
	if err != nil {
		return services.ConvertResult{}, wrapPlanError(sourcePath, err)
	}
	if encrypted {
		msg := "archive is password protected and decryption is not supported"
		if password != "" {
			msg = "archive is password protected; supplied password cannot be applied because decryption is not supported"
		}
		return services.ConvertResult{}, services.Wrap(services.ErrUnsupportedOrEncrypted, extractOperation, sourcePath, msg, nil)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return services.ConvertResult{}, services.Wrap(services.ErrIO, extractOperation, root, "create extraction directory", err)
	}

	files := 0
	for _, plan := range plans {
		if plan.dir {
			if err := os.MkdirAll(plan.target, 0o755); err != nil {
				return services.ConvertResult{}, services.Wrap(services.ErrIO, extractOperation, plan.name, "create directory", err)
			}
			continue
		}
		if err := writeEntry(plan, root); err != nil {
			var unsafe *unsafeEntryError
			if errors.As(err, &unsafe) {
				return services.ConvertResult{}, wrapPlanError(sourcePath, err)
			}
			return services.ConvertResult{}, services.Wrap(services.ErrIO, extractOperation, plan.name, "write entry", err)
		}
		files++
	}

	result := services.NewResult(outputFolder, fmt.Sprintf("Extracted %d files to %s", files, root), root)
	if password != "" {
		result.Warn("password ignored: archive is not encrypted")
	}

	logging.WithContext(ctx, e.logger).Info("archive extracted",
		logging.String("source", sourcePath),
		logging.String("destination", root),
		logging.Int("files", files),
		logging.Int("entries", len(plans)),
	)
	return result, nil
}

type unsafeEntryError struct {
	name   string
	reason string
}

func (e *unsafeEntryError) Error() string {
	return fmt.Sprintf("entry %q rejected: %s", e.name, e.reason)
}

type unsupportedEntryError struct {
	name   string
	method uint16
}

func (e *unsupportedEntryError) Error() string {
	return fmt.Sprintf("entry %q uses unsupported compression method %d", e.name, e.method)
}

func wrapPlanError(sourcePath string, err error) error {
	var unsafe *unsafeEntryError
	if errors.As(err, &unsafe) {
		return services.Wrap(services.ErrUnsafeEntry, extractOperation, sourcePath, "", err)
	}
	var unsupported *unsupportedEntryError
	if errors.As(err, &unsupported) {
		return services.Wrap(services.ErrUnsupportedOrEncrypted, extractOperation, sourcePath, "", err)
	}
	return services.Wrap(services.ErrIO, extractOperation, sourcePath, "", err)
}

// planEntries validates every entry against root and reports whether any
// entry is encrypted.
func planEntries(files []*zip.File, root string) ([]entryPlan, bool, error) {
	plans := make([]entryPlan, 0, len(files))
	encrypted := false
	for _, file := range files {
		name := file.Name
		if err := checkEntryName(name); err != nil {
			return nil, false, err
		}
		slashed := strings.ReplaceAll(name, `\`, "/")
		target := filepath.Join(root, filepath.FromSlash(slashed))
		if !fileutil.IsWithin(root, target) {
			return nil, false, &unsafeEntryError{name: name, reason: "resolves outside the extraction root"}
		}
		if !fileutil.ResolvesWithin(root, target) {
			return nil, false, &unsafeEntryError{name: name, reason: "follows a symlink outside the extraction root"}
		}
		if file.Flags&zipFlagEncrypted != 0 {
			encrypted = true
		}
		if file.Method != zip.Store && file.Method != zip.Deflate {
			return nil, false, &unsupportedEntryError{name: name, method: file.Method}
		}
		plans = append(plans, entryPlan{
			file:   file,
			name:   name,
			target: target,
			dir:    strings.HasSuffix(slashed, "/") || file.FileInfo().IsDir(),
		})
	}
	return plans, encrypted, nil
}

// checkEntryName rejects names that are absolute or contain parent-directory
// segments. Such names are refused outright rather than normalised.
func checkEntryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &unsafeEntryError{name: name, reason: "empty name"}
	}
	if strings.ContainsRune(name, 0) {
		return &unsafeEntryError{name: name, reason: "contains NUL byte"}
	}
	slashed := strings.ReplaceAll(name, `\`, "/")
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(name) || hasDriveLetter(slashed) {
		return &unsafeEntryError{name: name, reason: "absolute path"}
	}
	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return &unsafeEntryError{name: name, reason: "parent directory segment"}
		}
	}
	return nil
}

func hasDriveLetter(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func writeEntry(plan entryPlan, root string) error {
	if err := os.MkdirAll(filepath.Dir(plan.target), 0o755); err != nil {
		return err
	}
	if !fileutil.ResolvesWithin(root, plan.target) {
		return &unsafeEntryError{name: plan.name, reason: "follows a symlink outside the extraction root"}
	}
	rc, err := plan.file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	mode := plan.file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	_, err = fileutil.WriteStream(plan.target, rc, mode|0o600)
	return err
}

func sourceStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.TrimSpace(stem) == "" || stem == "." {
		return defaultStem
	}
	return stem
}
