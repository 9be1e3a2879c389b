// Package logging assembles structured slog loggers and formatting helpers used
// across fluxforge.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so engine code automatically tags log lines
// with the request correlation ID and operation name. A no-op logger is
// provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
