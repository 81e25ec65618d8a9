package deps

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Empty", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Resolved != present || results[0].Detail != "" {
		t.Fatalf("unexpected status for present binary: %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail: %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for empty command: %#v", results[2])
	}
}

func TestResolveToolPrefersSidecar(t *testing.T) {
	exeDir := t.TempDir()
	pathDir := t.TempDir()
	writeStub(t, filepath.Join(exeDir, "hkanno"))
	writeStub(t, filepath.Join(pathDir, "hkanno"))
	t.Setenv("PATH", pathDir)

	orig := executablePath
	executablePath = func() (string, error) { return filepath.Join(exeDir, "hkxshift"), nil }
	t.Cleanup(func() { executablePath = orig })

	got, err := ResolveTool("hkanno")
	if err != nil {
		t.Fatalf("ResolveTool: %v", err)
	}
	want, _ := filepath.EvalSymlinks(filepath.Join(exeDir, "hkanno"))
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Fatalf("expected sidecar %q, got %q", want, got)
	}
}

func TestResolveToolFallsBackToPath(t *testing.T) {
	pathDir := t.TempDir()
	writeStub(t, filepath.Join(pathDir, "hkanno"))
	t.Setenv("PATH", pathDir)
	chdirForTest(t, t.TempDir())

	orig := executablePath
	executablePath = func() (string, error) { return "", errors.New("unknown") }
	t.Cleanup(func() { executablePath = orig })

	got, err := ResolveTool("hkanno")
	if err != nil {
		t.Fatalf("ResolveTool: %v", err)
	}
	if got != filepath.Join(pathDir, "hkanno") {
		t.Fatalf("unexpected resolution %q", got)
	}
}

func TestResolveToolMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	if _, err := ResolveTool("definitely-missing-tool"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := ResolveTool(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for explicit path, got %v", err)
	}

	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ResolveTool(plain); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected non-executable file to be rejected, got %v", err)
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(dir) {
		if dir, err = os.Getwd(); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			panic("testing.Chdir: " + err.Error())
		}
	})
}
