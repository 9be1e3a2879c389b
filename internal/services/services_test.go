package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fluxforge/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithOperation(ctx, "extract_archive")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if op, ok := services.OperationFromContext(ctx); !ok || op != "extract_archive" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
}

func TestBlankOperationPreservesContext(t *testing.T) {
	ctx := services.WithOperation(context.Background(), "")
	if _, ok := services.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
}

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("permission denied")
	err := services.Wrap(services.ErrIO, "extract", "/tmp/a.zip", "create directory", base)
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "/tmp/a.zip", "create directory", "permission denied"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want services.Kind
	}{
		{"nil", nil, ""},
		{"io", services.Wrap(services.ErrIO, "op", "", "", nil), services.KindIO},
		{"encoding", services.Wrap(services.ErrEncoding, "gif", "ffmpeg", "exit 1", nil), services.KindEncoding},
		{"not implemented", services.Wrap(services.ErrNotImplemented, "extract", "a.7z", "", nil), services.KindNotImplemented},
		{"unsafe", services.Wrap(services.ErrUnsafeEntry, "extract", "../x", "", nil), services.KindUnsafeEntry},
		{"plain", errors.New("boom"), services.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResultWarn(t *testing.T) {
	result := services.NewResult("/out", "done", "/out/a.zip")
	result.Warn("password ignored")
	result.Warn("")
	if !result.Success {
		t.Fatal("expected success")
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "password ignored" {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
	if len(result.OutputFiles) != 1 || result.OutputFiles[0] != "/out/a.zip" {
		t.Fatalf("unexpected output files: %v", result.OutputFiles)
	}
}

func TestExecRunnerReportsExitCodeAndStderr(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "tool")
	body := []byte("#!/bin/sh\necho out\necho broken pipe >&2\nexit 3\n")
	if err := os.WriteFile(script, body, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	out, err := services.ExecRunner{}.Run(context.Background(), script, nil)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", out.ExitCode)
	}
	if strings.TrimSpace(string(out.Stdout)) != "out" {
		t.Fatalf("unexpected stdout %q", out.Stdout)
	}
	if strings.TrimSpace(string(out.Stderr)) != "broken pipe" {
		t.Fatalf("unexpected stderr %q", out.Stderr)
	}
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := services.ExecRunner{}.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	if err == nil {
		t.Fatal("expected spawn error for missing binary")
	}
}
