package archive

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatZip
	FormatSevenZip
	FormatRar
)

// String returns the canonical format name.
func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatSevenZip:
		return "7z"
	case FormatRar:
		return "rar"
	default:
		return "unknown"
	}
}

// Extension returns the canonical file extension including the leading dot.
func (f Format) Extension() string {
	if f == FormatUnknown {
		return ""
	}
	return "." + f.String()
}

// ParseFormat maps a format name such as "zip" or ".7z" to a Format.
func ParseFormat(name string) (Format, error) {
	normalized := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	switch normalized {
	case "zip":
		return FormatZip, nil
	case "7z":
		return FormatSevenZip, nil
	case "rar":
		return FormatRar, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown archive format %q", name)
	}
}

// FormatFromPath detects the format from a file suffix.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return FormatUnknown, fmt.Errorf("no file extension on %q", filepath.Base(path))
	}
	return ParseFormat(ext)
}
