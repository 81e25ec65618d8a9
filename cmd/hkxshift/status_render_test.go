package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"hkxshift/internal/config"
	"hkxshift/internal/deps"
	"hkxshift/internal/pipeline"
	"hkxshift/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Annotation tool", statusError, "Not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Annotation tool:", "[ERROR] Not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Annotation tool", statusOK, "Ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestDependencyLines(t *testing.T) {
	lines := dependencyLines([]deps.Status{
		{Name: "hkanno", Available: true, Resolved: "/opt/hkanno64.exe"},
		{Name: "hkanno", Detail: `binary "hkanno64.exe" not found`, Description: "Required to extract and merge annotation tracks"},
	}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[OK] Ready (/opt/hkanno64.exe)") {
		t.Fatalf("unexpected ready line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[ERROR]") || !strings.Contains(lines[1], "Required to extract") {
		t.Fatalf("unexpected missing line %q", lines[1])
	}
}

func TestResolveScaleText(t *testing.T) {
	tests := []struct {
		scale, preset string
		want          string
		wantErr       bool
	}{
		{scale: "0.85", want: "0.85"},
		{preset: "faster", want: "0.7"},
		{preset: "x1.2", want: "1.2"},
		{preset: "1.05", wantErr: true},
		{scale: "0.8", preset: "0.8", wantErr: true},
		{wantErr: true},
	}
	for _, tt := range tests {
		got, err := resolveScaleText(tt.scale, tt.preset)
		if tt.wantErr {
			if err == nil {
				t.Errorf("resolveScaleText(%q, %q) expected error", tt.scale, tt.preset)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("resolveScaleText(%q, %q) = %q, %v; want %q", tt.scale, tt.preset, got, err, tt.want)
		}
	}
	if _, err := resolveScaleText("", "1.0"); !errors.Is(err, preflight.ErrUnknownPreset) {
		t.Fatalf("expected unknown preset, got %v", err)
	}
}

func TestRunOptionsOverlayFlags(t *testing.T) {
	defaults := config.Default().Options
	opts := runOptions(defaults, runFlags{})
	if !opts.MakeBackup || !opts.DeleteIntermediates || !opts.PreserveProtected || opts.OpenOutput {
		t.Fatalf("unexpected defaults %+v", opts)
	}
	opts = runOptions(defaults, runFlags{noBackup: true, keepIntermediates: true, noPreserveProtected: true, open: true, verifyBackup: true})
	if opts.MakeBackup || opts.DeleteIntermediates || opts.PreserveProtected || !opts.OpenOutput || !opts.VerifyBackup {
		t.Fatalf("flags not applied %+v", opts)
	}
}

func TestRunExit(t *testing.T) {
	tests := []struct {
		name   string
		result pipeline.Result
		code   int
	}{
		{name: "completed", result: pipeline.Result{Status: pipeline.StatusCompleted}, code: exitOK},
		{name: "failures", result: pipeline.Result{Status: pipeline.StatusCompleted, Summary: pipeline.Summary{Failed: 2}}, code: exitFailure},
		{name: "cancelled", result: pipeline.Result{Status: pipeline.StatusCancelled}, code: exitCancelled},
		{name: "aborted", result: pipeline.Result{Status: pipeline.StatusAborted, Err: errors.New("lock held")}, code: exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(runExit(tt.result)); got != tt.code {
				t.Fatalf("exit code = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestConfirmAdvisories(t *testing.T) {
	advisories := []preflight.Advisory{{Kind: preflight.AdvisoryExtremeScale, Message: "0.5 is outside the recommended range"}}
	for answer, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "": false, "maybe\n": false} {
		var out bytes.Buffer
		got, err := confirmAdvisories(strings.NewReader(answer), &out, advisories, false)
		if err != nil || got != want {
			t.Errorf("answer %q = %v, %v; want %v", answer, got, err, want)
		}
		if !strings.Contains(out.String(), "recommended range") {
			t.Errorf("advisory not shown: %q", out.String())
		}
	}
}

func TestOpenFolderUsesPlatformOpener(t *testing.T) {
	for goos, want := range map[string]string{"linux": "xdg-open", "darwin": "open", "windows": "explorer"} {
		if name, args := openerCommand(goos, "/out"); name != want || len(args) != 1 || args[0] != "/out" {
			t.Errorf("openerCommand(%s) = %s %v", goos, name, args)
		}
	}

	var gotName string
	orig := startProcess
	startProcess = func(name string, args ...string) error {
		gotName = name
		return nil
	}
	t.Cleanup(func() { startProcess = orig })
	if err := openFolder("/out"); err != nil || gotName == "" {
		t.Fatalf("openFolder: %v (%q)", err, gotName)
	}
}

func TestRenderRunSummary(t *testing.T) {
	plan := pipeline.Plan{Job: pipeline.Job{Base: "CombatMod", ScaleText: "0.8", Options: pipeline.Options{MakeBackup: true}}}
	result := pipeline.Result{
		Status:    pipeline.StatusCompleted,
		OutputDir: "/results/CombatMod-merged",
		LogPath:   "/results/CombatMod_log.txt",
		Summary:   pipeline.Summary{Movesets: 1, Merged: 3, Failed: 1, BackedUp: 4, BackupBytes: 2048},
		Files: []pipeline.FileResult{
			{Moveset: "axe", File: "bad.hkx", State: pipeline.StateFailed, Phase: pipeline.PhaseExtract, Err: errors.New("hkanno extract: exit 1")},
		},
	}
	out := renderRunSummary(plan, result, false)
	for _, want := range []string{"CombatMod x0.8", "Completed with 1 failure(s)", "4 files (2.0 KiB)", "bad.hkx", "/results/CombatMod-merged"} {
		requireContains(t, out, want)
	}
}
