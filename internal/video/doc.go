// Package video wraps the external ffprobe/ffmpeg tools used for GIF export.
//
// Prober reports duration, resolution and frame rate for a source file and
// never fails: any probe problem degrades to fixed defaults. Estimate is a
// pure, deliberately coarse size model shown to users before a conversion.
// Converter runs the two-pass palette encode (palettegen then paletteuse)
// into the GIF export category and maps the tool outcome onto the shared
// result and error types in internal/services.
//
// Both tools are reached through services.CommandRunner so tests substitute
// fake executions.
package video
