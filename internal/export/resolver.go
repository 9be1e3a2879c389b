package export

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fluxforge/internal/services"
)

// DateLayout is the calendar-day folder format used when date folders are on.
const DateLayout = "2006-01-02"

var errBaseNotConfigured = errors.New("export base directory not configured")

// Settings is the slice of configuration the resolver reads. It is treated as
// immutable for the duration of one operation.
type Settings struct {
	BaseDir     string
	RootName    string
	DateFolders bool
}

// Root returns base/root without touching the filesystem.
func (s Settings) Root() string {
	return filepath.Join(strings.TrimSpace(s.BaseDir), strings.TrimSpace(s.RootName))
}

// Resolver composes output directories. The zero value uses the local clock.
type Resolver struct {
	// Now supplies the calendar date for date folders; nil means time.Now.
	Now func() time.Time
}

// Resolve returns the output directory for category, creating every missing
// directory in the chain. Creating an existing directory is a no-op.
func Resolve(settings Settings, category Category) (string, error) {
	return Resolver{}.Resolve(settings, category)
}

// Resolve returns the output directory for category, creating every missing
// directory in the chain.
func (r Resolver) Resolve(settings Settings, category Category) (string, error) {
	if !category.Valid() {
		return "", services.Wrap(services.ErrValidation, "resolve output", string(category), "unknown export category", nil)
	}
	dir, err := r.path(settings, category)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, "resolve output", dir, "create output directory", err)
	}
	return dir, nil
}

// EnsureTree creates base/root and every category folder beneath it, returning
// the root. Date folders are not created here; they appear on first use.
func (r Resolver) EnsureTree(settings Settings) (string, error) {
	root, err := checkedRoot(settings)
	if err != nil {
		return "", err
	}
	for _, category := range categories {
		dir := filepath.Join(root, category.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", services.Wrap(services.ErrIO, "create export tree", dir, "create category directory", err)
		}
	}
	return root, nil
}

func (r Resolver) path(settings Settings, category Category) (string, error) {
	root, err := checkedRoot(settings)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, category.Dir())
	if settings.DateFolders {
		dir = filepath.Join(dir, r.now().Format(DateLayout))
	}
	return dir, nil
}

func (r Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func checkedRoot(settings Settings) (string, error) {
	root := settings.Root()
	if strings.TrimSpace(settings.BaseDir) == "" || !filepath.IsAbs(root) {
		pathErr := &fs.PathError{Op: "mkdir", Path: root, Err: errBaseNotConfigured}
		return "", services.Wrap(services.ErrIO, "resolve output", root, "export base must be an absolute directory", pathErr)
	}
	return root, nil
}
