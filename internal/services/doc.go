// Package services defines the shared contracts every fluxforge engine
// returns and depends on.
//
// Key responsibilities:
//   - ConvertResult, the single success envelope returned by archive and GIF
//     operations.
//   - Structured error markers plus the Wrap helper that tag failures with a
//     stable kind (IoError, EncodingError, ...) while preserving the
//     underlying cause for errors.Is/As.
//   - CommandRunner, the thin abstraction over external tools (ffprobe,
//     ffmpeg) that lets tests substitute fakes and assert on arguments.
//   - Context helpers that stamp request IDs and operation names for logging.
//
// Engines should report failures through Wrap with one of the exported markers
// so callers can branch on KindOf instead of parsing message text.
package services
