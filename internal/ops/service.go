package ops

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fluxforge/internal/config"
	"fluxforge/internal/export"
	"fluxforge/internal/history"
	"fluxforge/internal/logging"
	"fluxforge/internal/services"
)

// Operation names used for logging and the history journal.
const (
	OpExtractArchive    = "extract_archive"
	OpCreateArchive     = "create_archive"
	OpGetVideoInfo      = "get_video_info"
	OpEstimateGifSize   = "estimate_gif_size"
	OpConvertVideoToGif = "convert_video_to_gif"
)

// ConfigSource supplies the configuration for one call.
type ConfigSource interface {
	Load() (*config.Config, error)
}

// ConfigSourceFunc adapts a function to ConfigSource.
type ConfigSourceFunc func() (*config.Config, error)

// Load calls f.
func (f ConfigSourceFunc) Load() (*config.Config, error) {
	return f()
}

// FileConfig reads the configuration file at path on every call. An empty
// path uses the default location.
func FileConfig(path string) ConfigSource {
	return ConfigSourceFunc(func() (*config.Config, error) {
		cfg, _, _, err := config.Load(path)
		return cfg, err
	})
}

// StaticConfig always returns cfg.
func StaticConfig(cfg *config.Config) ConfigSource {
	return ConfigSourceFunc(func() (*config.Config, error) {
		if cfg == nil {
			return nil, errors.New("no configuration supplied")
		}
		return cfg, nil
	})
}

// Option configures a Service.
type Option func(*Service)

// WithRunner overrides how ffmpeg/ffprobe are executed.
func WithRunner(runner services.CommandRunner) Option {
	return func(s *Service) {
		if runner != nil {
			s.runner = runner
		}
	}
}

// WithResolver overrides the output path resolver.
func WithResolver(resolver export.Resolver) Option {
	return func(s *Service) {
		s.resolver = resolver
	}
}

// WithRequestIDs overrides request ID generation.
func WithRequestIDs(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}

// Service implements the command surface.
type Service struct {
	configs  ConfigSource
	logger   *slog.Logger
	runner   services.CommandRunner
	resolver export.Resolver
	newID    func() string
}

// New constructs a Service.
func New(configs ConfigSource, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		configs: configs,
		logger:  logging.NewComponentLogger(logger, "ops"),
		runner:  services.ExecRunner{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// call carries per-request state from begin to finish.
type call struct {
	ctx       context.Context
	cfg       *config.Config
	operation string
	subject   string
	started   time.Time
	logger    *slog.Logger
}

func (s *Service) begin(ctx context.Context, operation, subject string) (*call, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, s.newID())
	}
	ctx = services.WithOperation(ctx, operation)
	logger := logging.WithContext(ctx, s.logger)

	if s.configs == nil {
		return nil, services.Wrap(services.ErrValidation, operation, "", "no configuration source", nil)
	}
	cfg, err := s.configs.Load()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, operation, "configuration", "load configuration", err)
	}
	logger.Debug("operation started", logging.String("subject", subject))
	return &call{
		ctx:       ctx,
		cfg:       cfg,
		operation: operation,
		subject:   subject,
		started:   time.Now(),
		logger:    logger,
	}, nil
}

// finish logs the outcome and journals it when history is enabled. Journal
// failures are logged, never returned.
func (s *Service) finish(c *call, result services.ConvertResult, err error) {
	elapsed := time.Since(c.started)
	if err != nil {
		c.logger.Warn("operation failed",
			logging.String("subject", c.subject),
			logging.ErrorKind(err),
			logging.Error(err),
		)
	} else {
		c.logger.Info("operation completed",
			logging.String("subject", c.subject),
			logging.String("message", result.Message),
			logging.Result(result),
			logging.Duration("elapsed", elapsed),
		)
	}

	if !c.cfg.History.Enabled {
		return
	}
	store, openErr := history.Open(c.ctx, c.cfg.History.Path)
	if openErr != nil {
		c.logger.Warn("history unavailable", logging.String("path", c.cfg.History.Path), logging.Error(openErr))
		return
	}
	defer store.Close()

	requestID, _ := services.RequestIDFromContext(c.ctx)
	entry := history.Entry{
		RequestID:    requestID,
		Operation:    c.operation,
		Subject:      c.subject,
		Success:      err == nil && result.Success,
		OutputFolder: result.OutputFolder,
		OutputFiles:  result.OutputFiles,
		Message:      result.Message,
		Warnings:     result.Warnings,
		Duration:     elapsed,
	}
	if err != nil {
		entry.Message = err.Error()
		entry.ErrorKind = string(services.KindOf(err))
	}
	if _, recErr := store.Record(c.ctx, entry); recErr != nil {
		c.logger.Warn("history record failed", logging.Error(recErr))
	}
}
