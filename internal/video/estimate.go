package video

import "math"

// GifOptions describes a GIF conversion request.
type GifOptions struct {
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	FPS        int     `json:"fps"`
	Quality    int     `json:"quality"`
	OutputName string  `json:"output_name"`
}

// Duration returns EndTime-StartTime, clamped at zero. A non-finite window
// has no duration.
func (o GifOptions) Duration() float64 {
	d := o.EndTime - o.StartTime
	if !finite(d) || d < 0 {
		return 0
	}
	return d
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// GifEstimate is an advisory size prediction.
type GifEstimate struct {
	EstimatedSizeMB float64 `json:"estimated_size_mb"`
	DurationSeconds float64 `json:"duration_seconds"`
	FrameCount      int     `json:"frame_count"`
}

const (
	bytesPerMB = 1024 * 1024
	maxFrames  = math.MaxInt32
)

// BytesPerPixel maps a quality tier to the per-pixel, per-frame byte cost of
// the estimate. Out-of-range tiers use the tier 3 value.
func BytesPerPixel(quality int) float64 {
	switch quality {
	case 1:
		return 0.05
	case 2:
		return 0.08
	case 3:
		return 0.12
	case 4:
		return 0.18
	case 5:
		return 0.25
	default:
		return 0.12
	}
}

// Estimate predicts the output size of a conversion. It is a coarse
// heuristic (pixels x frames x tier cost), not a model of the encoder.
func Estimate(opts GifOptions) GifEstimate {
	duration := opts.Duration()
	frames := 0
	if opts.FPS > 0 {
		frames = int(math.Min(math.Floor(duration*float64(opts.FPS)), maxFrames))
	}
	pixels := float64(max(opts.Width, 0)) * float64(max(opts.Height, 0))
	bytes := pixels * BytesPerPixel(opts.Quality) * float64(frames)
	return GifEstimate{
		EstimatedSizeMB: math.Round(bytes/bytesPerMB*10) / 10,
		DurationSeconds: duration,
		FrameCount:      frames,
	}
}
