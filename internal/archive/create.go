package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"fluxforge/internal/export"
	"fluxforge/internal/fileutil"
	"fluxforge/internal/logging"
	"fluxforge/internal/services"
)

const createOperation = "create archive"

// CreateOptions selects the container format and optional password.
type CreateOptions struct {
	// Format defaults to FormatZip when left as FormatUnknown.
	Format Format
	// Password is accepted but never applied; see Create.
	Password string
}

type source struct {
	path string
	info os.FileInfo
}

// Create writes a flat archive of sourcePaths into the Archives category.
//
// Entries are named by each file's base name; sources that are missing or not
// regular files are skipped and reported as warnings. When no source is
// usable the call fails with ValidationError and no empty archive is written.
// A password never results in encryption: the result carries a warning
// saying so.
func (e *Engine) Create(ctx context.Context, settings export.Settings, sourcePaths []string, outputName string, opts CreateOptions) (services.ConvertResult, error) {
	format := opts.Format
	if format == FormatUnknown {
		format = FormatZip
	}
	switch format {
	case FormatZip:
	case FormatSevenZip:
		return services.ConvertResult{}, services.Wrap(services.ErrNotImplemented, createOperation, outputName, "7z creation is not available", nil)
	default:
		return services.ConvertResult{}, services.Wrap(services.ErrUnsupportedFormat, createOperation, outputName, format.String()+" archives cannot be created", nil)
	}

	fileName, err := outputFileName(outputName, format)
	if err != nil {
		return services.ConvertResult{}, err
	}

	sources, skipped := collectSources(sourcePaths)
	if len(sources) == 0 {
		return services.ConvertResult{}, services.Wrap(services.ErrValidation, createOperation, fileName, fmt.Sprintf("no regular files to archive (%d paths skipped)", len(skipped)), nil)
	}

	outputFolder, err := e.resolver.Resolve(settings, export.CategoryArchives)
	if err != nil {
		return services.ConvertResult{}, err
	}
	outputPath := filepath.Join(outputFolder, fileName)
	names := entryNames(sources)

	err = fileutil.WriteAtomic(outputPath, 0o644, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for i, src := range sources {
			if err := addFile(zw, src, names[i]); err != nil {
				return fmt.Errorf("add %s: %w", src.path, err)
			}
		}
		return zw.Close()
	})
	if err != nil {
		return services.ConvertResult{}, services.Wrap(services.ErrIO, createOperation, outputPath, "write archive", err)
	}

	result := services.NewResult(outputFolder, fmt.Sprintf("Compressed %d files into %s", len(sources), fileName), outputPath)
	for _, skip := range skipped {
		result.Warn(skip)
	}
	if opts.Password != "" {
		result.Warn("password protection is not supported for zip output; archive was written unencrypted")
	}

	logging.WithContext(ctx, e.logger).Info("archive created",
		logging.String("output", outputPath),
		logging.Int("files", len(sources)),
		logging.Int("skipped", len(skipped)),
	)
	return result, nil
}

func outputFileName(outputName string, format Format) (string, error) {
	name := strings.TrimSpace(outputName)
	if name == "" {
		return "", services.Wrap(services.ErrValidation, createOperation, "", "output name required", nil)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", services.Wrap(services.ErrValidation, createOperation, name, "output name must not contain path separators", nil)
	}
	if !strings.EqualFold(filepath.Ext(name), format.Extension()) {
		name += format.Extension()
	}
	return name, nil
}

func collectSources(paths []string) ([]source, []string) {
	sources := make([]source, 0, len(paths))
	var skipped []string
	for _, path := range paths {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("skipped %s: %v", path, err))
			continue
		}
		if !info.Mode().IsRegular() {
			skipped = append(skipped, fmt.Sprintf("skipped %s: not a regular file", path))
			continue
		}
		sources = append(sources, source{path: path, info: info})
	}
	return sources, skipped
}

// entryNames flattens sources to NFC-normalised base names, suffixing
// duplicates with " (2)", " (3)" and so on.
func entryNames(sources []source) []string {
	used := make(map[string]struct{}, len(sources))
	names := make([]string, len(sources))
	for i, src := range sources {
		base := norm.NFC.String(filepath.Base(src.path))
		name := base
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		for n := 2; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s (%d)%s", stem, n, ext)
		}
		used[name] = struct{}{}
		names[i] = name
	}
	return names
}

func addFile(zw *zip.Writer, src source, name string) error {
	in, err := os.Open(src.path)
	if err != nil {
		return err
	}
	defer in.Close()

	header, err := zip.FileInfoHeader(src.info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
