package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"fluxforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose export base and history journal live in
// a unique temp directory. Date folders are disabled so tests can predict
// output paths; use WithDateFolders to turn them back on.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Export.BaseDir = filepath.Join(base, "exports")
	cfgVal.Export.DateFolders = false
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := os.MkdirAll(cfgVal.Export.BaseDir, 0o755); err != nil {
		t.Fatalf("mkdir export base: %v", err)
	}
	return builder.cfg
}

// WithDateFolders toggles date bucketing on the test config.
func WithDateFolders(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.DateFolders = enabled
	}
}

// WithHistory toggles the operation journal.
func WithHistory(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = enabled
	}
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names, points the config's tool paths at them and prepends their directory
// to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		for _, name := range names {
			path := StubBinary(b.t, filepath.Join(b.baseDir, "bin"), name, "exit 0\n")
			b.assignTool(name, path)
		}
		b.t.Setenv("PATH", filepath.Join(b.baseDir, "bin")+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

// WithToolScript writes a stub named name whose body is script (without the
// shebang line) and points the matching tool setting at it.
func WithToolScript(name, script string) ConfigOption {
	return func(b *configBuilder) {
		path := StubBinary(b.t, filepath.Join(b.baseDir, "bin"), name, script)
		b.assignTool(name, path)
	}
}

func (b *configBuilder) assignTool(name, path string) {
	switch name {
	case "ffmpeg":
		b.cfg.Tools.FFmpeg = path
	case "ffprobe":
		b.cfg.Tools.FFprobe = path
	}
}

// StubBinary writes an executable #!/bin/sh script into dir and returns its path.
func StubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Export.BaseDir)
}
