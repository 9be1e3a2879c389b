package archive

import (
	"log/slog"

	"fluxforge/internal/export"
	"fluxforge/internal/logging"
)

// Option configures an Engine.
type Option func(*Engine)

// WithResolver overrides the output path resolver (primarily for tests that
// pin the calendar date).
func WithResolver(resolver export.Resolver) Option {
	return func(e *Engine) {
		e.resolver = resolver
	}
}

// Engine extracts and creates archives under the Archives export category.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	logger   *slog.Logger
	resolver export.Resolver
}

// New constructs an archive engine.
func New(logger *slog.Logger, opts ...Option) *Engine {
	engine := &Engine{
		logger: logging.NewComponentLogger(logger, "archive"),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}
