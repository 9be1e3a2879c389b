package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"fluxforge/internal/export"
	"fluxforge/internal/logging"
	"fluxforge/internal/services"
)

type zipEntry struct {
	name      string
	body      string
	encrypted bool
}

func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		header := &zip.FileHeader{Name: entry.name, Method: zip.Deflate}
		if entry.encrypted {
			header.Flags |= zipFlagEncrypted
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("create entry %q: %v", entry.name, err)
		}
		if _, err := io.WriteString(w, entry.body); err != nil {
			t.Fatalf("write entry %q: %v", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
}

func readZipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer reader.Close()
	out := make(map[string]string, len(reader.File))
	for _, file := range reader.File {
		rc, err := file.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", file.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %q: %v", file.Name, err)
		}
		out[file.Name] = string(data)
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, export.Settings) {
	t.Helper()
	settings := export.Settings{BaseDir: t.TempDir(), RootName: "FluxForge", DateFolders: true}
	clock := func() time.Time { return time.Date(2026, time.January, 2, 10, 0, 0, 0, time.Local) }
	return New(logging.NewNop(), WithResolver(export.Resolver{Now: clock})), settings
}

func archivesDir(settings export.Settings) string {
	return filepath.Join(settings.BaseDir, settings.RootName, "Archives", "2026-01-02")
}

func TestFormatParsing(t *testing.T) {
	tests := []struct {
		input string
		want  Format
		ok    bool
	}{
		{"zip", FormatZip, true},
		{".ZIP", FormatZip, true},
		{"7z", FormatSevenZip, true},
		{"rar", FormatRar, true},
		{"tar", FormatUnknown, false},
		{"", FormatUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err == nil) != tt.ok || got != tt.want {
				t.Fatalf("ParseFormat(%q) = %v, %v", tt.input, got, err)
			}
		})
	}
	if f, err := FormatFromPath("/tmp/photos.backup.7z"); err != nil || f != FormatSevenZip {
		t.Fatalf("FormatFromPath = %v, %v", f, err)
	}
	if _, err := FormatFromPath("/tmp/README"); err == nil {
		t.Fatal("expected error for missing extension")
	}
}

func TestExtractZipWritesEntries(t *testing.T) {
	engine, settings := newTestEngine(t)
	src := filepath.Join(t.TempDir(), "photos.zip")
	writeZip(t, src, []zipEntry{
		{name: "docs/"},
		{name: "docs/readme.txt", body: "hello"},
		{name: "a/b/c.txt", body: "nested"},
		{name: "top.txt", body: "top"},
	})

	root := filepath.Join(archivesDir(settings), "photos")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "top.txt"), []byte("stale content that is longer"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := engine.Extract(context.Background(), settings, src, "")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !result.Success {
		t.Fatal("expected success")
	}
	if result.OutputFolder != archivesDir(settings) {
		t.Fatalf("unexpected output folder %q", result.OutputFolder)
	}
	if len(result.OutputFiles) != 1 || result.OutputFiles[0] != root {
		t.Fatalf("unexpected output files %v", result.OutputFiles)
	}
	if !strings.Contains(result.Message, "3 files") {
		t.Fatalf("unexpected message %q", result.Message)
	}

	for rel, want := range map[string]string{
		"docs/readme.txt": "hello",
		"a/b/c.txt":       "nested",
		"top.txt":         "top",
	} {
		got, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			t.Fatalf("read %s: %v", rel, err)
		}
		if string(got) != want {
			t.Fatalf("%s: got %q want %q", rel, got, want)
		}
	}
}

func TestExtractRejectsTraversalWithoutWriting(t *testing.T) {
	engine, settings := newTestEngine(t)
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "evil.zip")
	writeZip(t, src, []zipEntry{
		{name: "safe.txt", body: "fine"},
		{name: "../../escaped.txt", body: "pwned"},
	})

	_, err := engine.Extract(context.Background(), settings, src, "")
	if !errors.Is(err, services.ErrUnsafeEntry) {
		t.Fatalf("expected unsafe entry error, got %v", err)
	}
	if !strings.Contains(err.Error(), "../../escaped.txt") {
		t.Fatalf("expected entry name in error, got %v", err)
	}

	root := filepath.Join(archivesDir(settings), "evil")
	if _, statErr := os.Stat(root); !os.IsNotExist(statErr) {
		t.Fatalf("expected no extraction directory, stat err %v", statErr)
	}
	for _, dir := range []string{filepath.Dir(root), filepath.Dir(filepath.Dir(root)), srcDir} {
		if _, statErr := os.Stat(filepath.Join(dir, "escaped.txt")); !os.IsNotExist(statErr) {
			t.Fatalf("escaped file written in %s", dir)
		}
	}
}

func TestExtractRefusesSymlinkInsideRoot(t *testing.T) {
	engine, settings := newTestEngine(t)
	root := filepath.Join(archivesDir(settings), "bundle")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	src := filepath.Join(t.TempDir(), "bundle.zip")
	writeZip(t, src, []zipEntry{
		{name: "safe.txt", body: "fine"},
		{name: "link/escaped.txt", body: "pwned"},
	})

	_, err := engine.Extract(context.Background(), settings, src, "")
	if !errors.Is(err, services.ErrUnsafeEntry) {
		t.Fatalf("expected unsafe entry error, got %v", err)
	}
	if !strings.Contains(err.Error(), "link/escaped.txt") {
		t.Fatalf("expected entry name in error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(outside, "escaped.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("file written through symlink, stat err %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(root, "safe.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("expected nothing extracted, stat err %v", statErr)
	}
}

func TestExtractRefusesSymlinkedExtractionDir(t *testing.T) {
	engine, settings := newTestEngine(t)
	if err := os.MkdirAll(archivesDir(settings), 0o755); err != nil {
		t.Fatal(err)
	}
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(archivesDir(settings), "bundle")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	src := filepath.Join(t.TempDir(), "bundle.zip")
	writeZip(t, src, []zipEntry{{name: "safe.txt", body: "fine"}})

	_, err := engine.Extract(context.Background(), settings, src, "")
	if !errors.Is(err, services.ErrUnsafeEntry) {
		t.Fatalf("expected unsafe entry error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(outside, "safe.txt")); !os.IsNotExist(statErr) {
		t.Fatalf("file written through symlinked root, stat err %v", statErr)
	}
}

func TestCheckEntryName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"file.txt", true},
		{"dir/", true},
		{"a/b/c..d.txt", true},
		{"../x", false},
		{"a/../../x", false},
		{"a/../b", false},
		{`..\x`, false},
		{"/etc/passwd", false},
		{`C:\Windows\x`, false},
		{"c:/x", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkEntryName(tt.name)
			if (err == nil) != tt.ok {
				t.Fatalf("checkEntryName(%q) error = %v, want ok=%v", tt.name, err, tt.ok)
			}
		})
	}
}

func TestExtractEncryptedArchive(t *testing.T) {
	engine, settings := newTestEngine(t)
	src := filepath.Join(t.TempDir(), "secret.zip")
	writeZip(t, src, []zipEntry{{name: "secret.txt", body: "ciphertext", encrypted: true}})

	for _, password := range []string{"", "hunter2"} {
		_, err := engine.Extract(context.Background(), settings, src, password)
		if !errors.Is(err, services.ErrUnsupportedOrEncrypted) {
			t.Fatalf("password %q: expected unsupported/encrypted error, got %v", password, err)
		}
	}
	if _, err := os.Stat(filepath.Join(archivesDir(settings), "secret")); !os.IsNotExist(err) {
		t.Fatalf("expected no extraction directory, stat err %v", err)
	}
}

func TestExtractPasswordOnPlainArchiveWarns(t *testing.T) {
	engine, settings := newTestEngine(t)
	src := filepath.Join(t.TempDir(), "plain.zip")
	writeZip(t, src, []zipEntry{{name: "a.txt", body: "a"}})

	result, err := engine.Extract(context.Background(), settings, src, "hunter2")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
}

func TestExtractPlaceholderFormatsAreNotImplemented(t *testing.T) {
	engine, settings := newTestEngine(t)
	for _, name := range []string{"bundle.7z", "bundle.rar"} {
		_, err := engine.Extract(context.Background(), settings, filepath.Join(t.TempDir(), name), "")
		if !errors.Is(err, services.ErrNotImplemented) {
			t.Fatalf("%s: expected not implemented, got %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(settings.BaseDir, settings.RootName)); !os.IsNotExist(err) {
		t.Fatalf("expected no output tree for placeholder formats, stat err %v", err)
	}
}

func TestExtractUnsupportedAndMissing(t *testing.T) {
	engine, settings := newTestEngine(t)

	_, err := engine.Extract(context.Background(), settings, "/tmp/movie.tar.gz", "")
	if !errors.Is(err, services.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.zip")
	_, err = engine.Extract(context.Background(), settings, missing, "")
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
	if !strings.Contains(err.Error(), missing) {
		t.Fatalf("expected path in error, got %v", err)
	}

	corrupt := filepath.Join(t.TempDir(), "corrupt.zip")
	if err := os.WriteFile(corrupt, []byte("definitely not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = engine.Extract(context.Background(), settings, corrupt, "")
	if !errors.Is(err, services.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format for corrupt archive, got %v", err)
	}
}

func TestCreateSkipsMissingSources(t *testing.T) {
	engine, settings := newTestEngine(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "one.txt")
	second := filepath.Join(dir, "two.txt")
	if err := os.WriteFile(first, []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("2"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "gone.txt")

	result, err := engine.Create(context.Background(), settings, []string{first, missing, second, dir}, "bundle", CreateOptions{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	want := filepath.Join(archivesDir(settings), "bundle.zip")
	if len(result.OutputFiles) != 1 || result.OutputFiles[0] != want {
		t.Fatalf("unexpected output files %v", result.OutputFiles)
	}
	entries := readZipEntries(t, want)
	if len(entries) != 2 || entries["one.txt"] != "1" || entries["two.txt"] != "2" {
		t.Fatalf("unexpected entries %v", entries)
	}
	if len(result.Warnings) != 2 {
		t.Fatalf("expected warnings for missing path and directory, got %v", result.Warnings)
	}
}

func TestCreateNameHandling(t *testing.T) {
	engine, settings := newTestEngine(t)
	file := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(file, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := engine.Create(context.Background(), settings, []string{file}, "Backup.ZIP", CreateOptions{Format: FormatZip})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if filepath.Base(result.OutputFiles[0]) != "Backup.ZIP" {
		t.Fatalf("expected extension to be kept, got %q", result.OutputFiles[0])
	}

	for _, bad := range []string{"", "  ", "../x", "nested/name"} {
		if _, err := engine.Create(context.Background(), settings, []string{file}, bad, CreateOptions{}); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("name %q: expected validation error, got %v", bad, err)
		}
	}
}

func TestCreatePasswordIsReportedAsUnapplied(t *testing.T) {
	engine, settings := newTestEngine(t)
	file := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(file, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := engine.Create(context.Background(), settings, []string{file}, "secret", CreateOptions{Password: "hunter2"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "unencrypted") {
		t.Fatalf("expected unencrypted warning, got %v", result.Warnings)
	}
	reader, err := zip.OpenReader(result.OutputFiles[0])
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	if reader.File[0].Flags&zipFlagEncrypted != 0 {
		t.Fatal("entry unexpectedly flagged as encrypted")
	}
}

func TestCreateFormatDispatch(t *testing.T) {
	engine, settings := newTestEngine(t)
	file := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(file, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Create(context.Background(), settings, []string{file}, "x", CreateOptions{Format: FormatSevenZip}); !errors.Is(err, services.ErrNotImplemented) {
		t.Fatalf("expected not implemented for 7z, got %v", err)
	}
	if _, err := engine.Create(context.Background(), settings, []string{file}, "x", CreateOptions{Format: FormatRar}); !errors.Is(err, services.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format for rar, got %v", err)
	}
}

func TestCreateWithoutUsableSourcesFails(t *testing.T) {
	engine, settings := newTestEngine(t)
	_, err := engine.Create(context.Background(), settings, []string{filepath.Join(t.TempDir(), "nope.txt")}, "empty", CreateOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(archivesDir(settings), "empty.zip")); !os.IsNotExist(statErr) {
		t.Fatalf("expected no archive written, stat err %v", statErr)
	}
}

func TestCreateDeduplicatesFlatNames(t *testing.T) {
	engine, settings := newTestEngine(t)
	base := t.TempDir()
	var paths []string
	for i, dir := range []string{"a", "b", "c"} {
		path := filepath.Join(base, dir, "notes.txt")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte{byte('0' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	result, err := engine.Create(context.Background(), settings, paths, "notes", CreateOptions{})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	entries := readZipEntries(t, result.OutputFiles[0])
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	want := []string{"notes (2).txt", "notes (3).txt", "notes.txt"}
	if strings.Join(names, "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected entry names %v", names)
	}
	if entries["notes.txt"] != "0" || entries["notes (3).txt"] != "2" {
		t.Fatalf("entry contents shuffled: %v", entries)
	}
}

func TestExtractCreateExtractRoundTrip(t *testing.T) {
	engine, settings := newTestEngine(t)
	original := map[string]string{
		"alpha.txt": "first file",
		"beta.bin":  string([]byte{0, 1, 2, 3, 254, 255}),
		"gamma.md":  strings.Repeat("compressible line\n", 500),
	}
	src := filepath.Join(t.TempDir(), "source.zip")
	entries := make([]zipEntry, 0, len(original))
	for name, body := range original {
		entries = append(entries, zipEntry{name: name, body: body})
	}
	writeZip(t, src, entries)

	first, err := engine.Extract(context.Background(), settings, src, "")
	if err != nil {
		t.Fatalf("first extract: %v", err)
	}
	var paths []string
	for name := range original {
		paths = append(paths, filepath.Join(first.OutputFiles[0], name))
	}

	created, err := engine.Create(context.Background(), settings, paths, "rebuilt", CreateOptions{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := engine.Extract(context.Background(), settings, created.OutputFiles[0], "")
	if err != nil {
		t.Fatalf("second extract: %v", err)
	}

	for name, want := range original {
		got, err := os.ReadFile(filepath.Join(second.OutputFiles[0], name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.Equal(got, []byte(want)) {
			t.Fatalf("%s: content mismatch after round trip", name)
		}
	}
}
