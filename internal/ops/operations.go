package ops

import (
	"context"
	"os"
	"strings"

	"fluxforge/internal/archive"
	"fluxforge/internal/logging"
	"fluxforge/internal/services"
	"fluxforge/internal/video"
)

// ArchiveOptions mirrors the front-end request for archive creation.
type ArchiveOptions struct {
	// Format is "zip" (default), "7z" or "rar".
	Format   string `json:"format"`
	Password string `json:"password,omitempty"`
}

// ExtractArchive unpacks the archive at path into the Archives category.
func (s *Service) ExtractArchive(ctx context.Context, path, password string) (services.ConvertResult, error) {
	c, err := s.begin(ctx, OpExtractArchive, path)
	if err != nil {
		return services.ConvertResult{}, err
	}
	engine := archive.New(s.logger, archive.WithResolver(s.resolver))
	result, err := engine.Extract(c.ctx, c.cfg.ExportSettings(), path, password)
	s.finish(c, result, err)
	return result, err
}

// CreateArchive packs paths into a new archive named outputName. Missing
// sources become warnings; a list with no usable source is a ValidationError
// rather than an empty archive.
func (s *Service) CreateArchive(ctx context.Context, paths []string, outputName string, opts ArchiveOptions) (services.ConvertResult, error) {
	c, err := s.begin(ctx, OpCreateArchive, outputName)
	if err != nil {
		return services.ConvertResult{}, err
	}

	format := archive.FormatZip
	if name := strings.TrimSpace(opts.Format); name != "" {
		parsed, parseErr := archive.ParseFormat(name)
		if parseErr != nil {
			err := services.Wrap(services.ErrUnsupportedFormat, OpCreateArchive, name, "unknown archive format", parseErr)
			s.finish(c, services.ConvertResult{}, err)
			return services.ConvertResult{}, err
		}
		format = parsed
	}

	engine := archive.New(s.logger, archive.WithResolver(s.resolver))
	result, err := engine.Create(c.ctx, c.cfg.ExportSettings(), paths, outputName, archive.CreateOptions{
		Format:   format,
		Password: opts.Password,
	})
	s.finish(c, result, err)
	return result, err
}

// GetVideoInfo probes path. A missing file is an IoError; any probe failure
// after that degrades to default values.
func (s *Service) GetVideoInfo(ctx context.Context, path string) (video.VideoInfo, error) {
	c, err := s.begin(ctx, OpGetVideoInfo, path)
	if err != nil {
		return video.VideoInfo{}, err
	}
	if _, err := os.Stat(path); err != nil {
		return video.VideoInfo{}, services.Wrap(services.ErrIO, OpGetVideoInfo, path, "stat video", err)
	}
	prober := video.NewProber(s.logger, c.cfg.FFprobeBinary(), s.runner)
	info := prober.Probe(c.ctx, path)
	c.logger.Debug("video probed",
		logging.String("path", path),
		logging.Float64("duration", info.DurationSeconds),
		logging.Int("width", info.Width),
		logging.Int("height", info.Height),
	)
	return info, nil
}

// EstimateGifSize returns the advisory size estimate for opts. path only
// identifies the request in logs; the estimate never reads the file.
func (s *Service) EstimateGifSize(ctx context.Context, path string, opts video.GifOptions) video.GifEstimate {
	if ctx == nil {
		ctx = context.Background()
	}
	estimate := video.Estimate(opts)
	ctx = services.WithOperation(ctx, OpEstimateGifSize)
	logging.WithContext(ctx, s.logger).Debug("gif size estimated",
		logging.String("path", path),
		logging.Float64("estimated_size_mb", estimate.EstimatedSizeMB),
		logging.Int("frames", estimate.FrameCount),
	)
	return estimate
}

// ConvertVideoToGif encodes the requested window of path into the GIF category.
func (s *Service) ConvertVideoToGif(ctx context.Context, path string, opts video.GifOptions) (services.ConvertResult, error) {
	c, err := s.begin(ctx, OpConvertVideoToGif, path)
	if err != nil {
		return services.ConvertResult{}, err
	}
	converter := video.NewConverter(s.logger, c.cfg.FFmpegBinary(), s.runner, video.WithResolver(s.resolver))
	result, err := converter.ConvertToGif(c.ctx, c.cfg.ExportSettings(), path, opts)
	s.finish(c, result, err)
	return result, err
}
