// Package config loads, normalizes, validates and persists fluxforge
// configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files and resolves the Documents-relative export
// base on first run. The Config type centralizes every knob the CLI and the
// conversion operations need; downstream packages only ever see the slices
// they consume (for example export.Settings through ExportSettings).
//
// Always obtain settings through this package so callers receive absolute
// paths, canonical log formats and clear validation errors.
package config
