package video

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fluxforge/internal/export"
	"fluxforge/internal/logging"
	"fluxforge/internal/services"
)

const (
	convertOperation = "convert to gif"
	defaultFFmpeg    = "ffmpeg"
	gifExtension     = ".gif"
)

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithResolver overrides the output path resolver.
func WithResolver(resolver export.Resolver) ConverterOption {
	return func(c *Converter) {
		c.resolver = resolver
	}
}

// Converter turns video clips into GIFs with ffmpeg.
type Converter struct {
	runner   services.CommandRunner
	binary   string
	logger   *slog.Logger
	resolver export.Resolver
}

// NewConverter constructs a Converter. A nil runner executes real processes;
// an empty binary means "ffmpeg" on PATH.
func NewConverter(logger *slog.Logger, binary string, runner services.CommandRunner, opts ...ConverterOption) *Converter {
	if runner == nil {
		runner = services.ExecRunner{}
	}
	if binary == "" {
		binary = defaultFFmpeg
	}
	c := &Converter{
		runner: runner,
		binary: binary,
		logger: logging.NewComponentLogger(logger, "video"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks the request invariants: a finite non-empty window, positive
// dimensions and frame rate, and a quality tier in 1..5.
func (o GifOptions) Validate() error {
	var problems []string
	if !finite(o.StartTime) || !finite(o.EndTime) {
		problems = append(problems, fmt.Sprintf("start %v and end %v must be finite", o.StartTime, o.EndTime))
	} else if !(o.EndTime > o.StartTime) {
		problems = append(problems, fmt.Sprintf("end time %s must be after start time %s", formatSeconds(o.EndTime), formatSeconds(o.StartTime)))
	}
	if o.StartTime < 0 {
		problems = append(problems, "start time must not be negative")
	}
	if o.Width <= 0 || o.Height <= 0 {
		problems = append(problems, fmt.Sprintf("size %dx%d must be positive", o.Width, o.Height))
	}
	if o.FPS <= 0 {
		problems = append(problems, fmt.Sprintf("fps %d must be positive", o.FPS))
	}
	if o.Quality < 1 || o.Quality > 5 {
		problems = append(problems, fmt.Sprintf("quality %d must be between 1 and 5", o.Quality))
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, convertOperation, "", strings.Join(problems, "; "), nil)
}

// ConvertToGif encodes [StartTime, EndTime) of sourcePath into the GIF
// export category. Any file already at the target path is replaced.
func (c *Converter) ConvertToGif(ctx context.Context, settings export.Settings, sourcePath string, opts GifOptions) (services.ConvertResult, error) {
	if err := opts.Validate(); err != nil {
		return services.ConvertResult{}, err
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return services.ConvertResult{}, services.Wrap(services.ErrIO, convertOperation, sourcePath, "stat source", err)
	}
	if info.IsDir() {
		return services.ConvertResult{}, services.Wrap(services.ErrIO, convertOperation, sourcePath, "source is a directory", nil)
	}

	fileName, err := gifFileName(opts.OutputName, sourcePath)
	if err != nil {
		return services.ConvertResult{}, err
	}

	outputFolder, err := c.resolver.Resolve(settings, export.CategoryGIF)
	if err != nil {
		return services.ConvertResult{}, err
	}
	outputPath := filepath.Join(outputFolder, fileName)

	if err := os.Remove(outputPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.ConvertResult{}, services.Wrap(services.ErrIO, convertOperation, outputPath, "remove existing output", err)
	}

	logger := logging.WithContext(ctx, c.logger)
	args := BuildArgs(sourcePath, outputPath, opts)
	logger.Debug("running ffmpeg", logging.String("binary", c.binary), logging.Strings("args", args))

	started := time.Now()
	output, err := c.runner.Run(ctx, c.binary, args)
	if err != nil {
		return services.ConvertResult{}, services.Wrap(services.ErrExecution, convertOperation, c.binary, "start transcoder", err)
	}
	if output.ExitCode != 0 {
		diagnostic := string(output.Stderr)
		if strings.TrimSpace(diagnostic) == "" {
			diagnostic = fmt.Sprintf("exit status %d", output.ExitCode)
		}
		return services.ConvertResult{}, services.Wrap(services.ErrEncoding, convertOperation, c.binary, diagnostic, nil)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return services.ConvertResult{}, services.Wrap(services.ErrEncoding, convertOperation, outputPath, "transcoder exited successfully but produced no output", err)
	}

	logger.Info("gif created",
		logging.String("source", sourcePath),
		logging.String("output", outputPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return services.NewResult(outputFolder, fmt.Sprintf("Converted %s to GIF", filepath.Base(sourcePath)), outputPath), nil
}

// BuildArgs returns the ffmpeg arguments for the palette-based encode.
func BuildArgs(sourcePath, outputPath string, opts GifOptions) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(opts.StartTime),
		"-t", formatSeconds(opts.Duration()),
		"-i", sourcePath,
		"-filter_complex", FilterGraph(opts),
		outputPath,
	}
}

// FilterGraph builds the two-stage palette filter graph: frames are resampled
// and scaled with lanczos, a palette is generated from inter-frame
// differences, then applied with ordered (bayer) dithering.
func FilterGraph(opts GifOptions) string {
	return fmt.Sprintf(
		"[0:v]fps=%d,scale=%d:%d:flags=lanczos[x];[x]split[a][b];"+
			"[a]palettegen=stats_mode=diff:max_colors=%d[p];"+
			"[b][p]paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
		opts.FPS, opts.Width, opts.Height, PaletteColors(opts.Quality),
	)
}

// PaletteColors maps a quality tier to the palette size.
func PaletteColors(quality int) int {
	switch quality {
	case 1:
		return 32
	case 2:
		return 64
	case 3:
		return 128
	case 4:
		return 192
	case 5:
		return 256
	default:
		return 128
	}
}

func gifFileName(name, sourcePath string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		base := filepath.Base(sourcePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", services.Wrap(services.ErrValidation, convertOperation, name, "output name must not contain path separators", nil)
	}
	if !strings.HasSuffix(strings.ToLower(name), gifExtension) {
		name += gifExtension
	}
	return name, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
