package video

import (
	"context"
	"log/slog"
	"math"

	"fluxforge/internal/logging"
	"fluxforge/internal/media/ffprobe"
	"fluxforge/internal/services"
)

// Fallbacks reported when ffprobe cannot supply a value.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
	DefaultFPS    = 30.0
)

// VideoInfo summarizes a source video for preview and option defaults.
type VideoInfo struct {
	Path            string  `json:"path"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	FPS             float64 `json:"fps"`
}

func defaultInfo(path string) VideoInfo {
	return VideoInfo{Path: path, Width: DefaultWidth, Height: DefaultHeight, FPS: DefaultFPS}
}

// Prober inspects videos with ffprobe.
type Prober struct {
	runner services.CommandRunner
	binary string
	logger *slog.Logger
}

// NewProber constructs a Prober. A nil runner executes real processes; an
// empty binary means "ffprobe" on PATH.
func NewProber(logger *slog.Logger, binary string, runner services.CommandRunner) *Prober {
	if runner == nil {
		runner = services.ExecRunner{}
	}
	if binary == "" {
		binary = ffprobe.DefaultBinary
	}
	return &Prober{
		runner: runner,
		binary: binary,
		logger: logging.NewComponentLogger(logger, "video"),
	}
}

// Probe returns the media properties of path. Missing or invalid fields fall
// back individually to the defaults; a failed probe returns all defaults.
func (p *Prober) Probe(ctx context.Context, path string) VideoInfo {
	info := defaultInfo(path)

	result, err := ffprobe.Inspect(ctx, p.runner, p.binary, path)
	if err != nil {
		logging.WithContext(ctx, p.logger).Warn("probe failed; using defaults",
			logging.String("path", path),
			logging.String("binary", p.binary),
			logging.Error(err),
		)
		return info
	}

	stream, hasVideo := result.VideoStream()

	duration := result.DurationSeconds()
	if !usable(duration) && hasVideo {
		duration = stream.DurationSeconds()
	}
	if usable(duration) {
		info.DurationSeconds = duration
	}

	if !hasVideo {
		logging.WithContext(ctx, p.logger).Debug("no video stream reported", logging.String("path", path))
		return info
	}
	if stream.Width > 0 {
		info.Width = stream.Width
	}
	if stream.Height > 0 {
		info.Height = stream.Height
	}
	if fps, ok := stream.FrameRate(); ok {
		info.FPS = fps
	}
	return info
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
