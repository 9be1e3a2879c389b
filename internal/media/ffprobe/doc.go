// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties including frame rates
//   - Format: container-level metadata (duration, size, bitrate)
//
// Inspect executes ffprobe through a services.CommandRunner so callers and
// tests control process execution. Helper methods on Result and Stream parse
// durations and "num/den" frame rates.
package ffprobe
