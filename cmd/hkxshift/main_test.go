package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hkxshift/internal/audit"
	"hkxshift/internal/history"
	"hkxshift/internal/pipeline"
	"hkxshift/internal/services/hkanno"
	"hkxshift/internal/testsupport"
)

func TestRunCommandRescalesSource(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{
		"sword/attack.hkx":       "1.000000 SoundPlay.WPNSwing\n",
		"sword/weapon_equip.hkx": "0.500000 Equip\n",
		"sword/_conditions.txt":  "IsEquipped\n",
	})

	stdout, stderr, err := env.run(t, "", "run", env.source, "--scale", "0.8")
	if err != nil {
		t.Fatalf("run failed: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, stdout, "Completed")
	requireContains(t, stdout, "CPR files preserved")

	merged := filepath.Join(env.cfg.Paths.ResultsDir, "CombatMod-merged", "sword")
	data, err := os.ReadFile(filepath.Join(merged, "attack.hkx"))
	if err != nil {
		t.Fatalf("read merged asset: %v", err)
	}
	if string(data) != "0.800000 SoundPlay.WPNSwing\n" {
		t.Fatalf("merged asset = %q", data)
	}
	if data, _ := os.ReadFile(filepath.Join(merged, "weapon_equip.hkx")); string(data) != "0.500000 Equip\n" {
		t.Fatalf("cpr asset changed: %q", data)
	}
	if _, err := os.Stat(filepath.Join(merged, "_conditions.txt")); err != nil {
		t.Fatalf("support file not copied: %v", err)
	}

	logText, err := os.ReadFile(filepath.Join(env.cfg.Paths.ResultsDir, audit.FileName("CombatMod")))
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if strings.Contains(string(logText), "hctFilterTexture.dll") {
		t.Fatal("tool noise leaked into the audit log")
	}
	requireContains(t, string(logText), audit.EndMarker)
}

func TestRunCommandReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{
		"axe/a.hkx":   "1.0 A\n",
		"axe/bad.hkx": "CORRUPT\n",
	})
	stdout, _, err := env.run(t, "", "run", env.source, "--scale", "1.2", "--no-backup")
	if code := exitCode(err); code != exitFailure {
		t.Fatalf("exit code = %d (%v)", code, err)
	}
	requireContains(t, stdout, "Completed with 1 failure(s)")
	requireContains(t, stdout, "bad.hkx")
	if _, statErr := os.Stat(filepath.Join(env.cfg.Paths.ResultsDir, "CombatMod-merged", "axe", "a.hkx")); statErr != nil {
		t.Fatalf("healthy file should still merge: %v", statErr)
	}
}

func TestRunCommandAdvisoryPrompt(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"bow/draw.hkx": "1.0 Draw\n"})

	stdout, _, err := env.run(t, "n\n", "run", env.source, "--scale", "0.5")
	if !errors.Is(err, errDeclined) {
		t.Fatalf("expected decline, got %v", err)
	}
	requireContains(t, stdout, "Continue? [y/N]")
	if _, statErr := os.Stat(env.cfg.Paths.ResultsDir); !os.IsNotExist(statErr) {
		t.Fatal("declined run must not create the results directory")
	}

	if _, stderr, err := env.run(t, "y\n", "run", env.source, "--scale", "0.5"); err != nil {
		t.Fatalf("confirmed run failed: %v\n%s", err, stderr)
	}
	if _, _, err := env.run(t, "", "run", env.source, "--scale", "0.5", "--yes"); err != nil {
		t.Fatalf("--yes run failed: %v", err)
	}
}

func TestRunCommandPreconditions(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"bow/draw.hkx": "1.0 Draw\n"})

	_, _, err := env.run(t, "", "run", env.source, "--scale", "1.0")
	if !errors.Is(err, pipeline.ErrNoopScale) || exitCode(err) != exitFailure {
		t.Fatalf("expected no-op scale rejection, got %v", err)
	}
	_, _, err = env.run(t, "", "run", env.source)
	if err == nil || !strings.Contains(err.Error(), "multiplier is required") {
		t.Fatalf("expected missing multiplier error, got %v", err)
	}
	_, _, err = env.run(t, "", "run", env.source, "--scale", "0.8", "--preset", "faster")
	if err == nil {
		t.Fatal("expected conflict between --scale and --preset")
	}

	env.cfg.Tool.Binary = filepath.Join(env.baseDir, "missing", "hkanno64.exe")
	writeTestConfig(t, env.configPath, env.cfg)
	_, _, err = env.run(t, "", "run", env.source, "--preset", "slower")
	if !errors.Is(err, hkanno.ErrToolMissing) {
		t.Fatalf("expected missing tool, got %v", err)
	}
	if _, statErr := os.Stat(env.cfg.Paths.ResultsDir); !os.IsNotExist(statErr) {
		t.Fatal("precondition failures must not create the results directory")
	}
}

func TestHistoryCommands(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"sword/a.hkx": "1.0 A\n"})

	stdout, _, err := env.run(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, stdout, "No runs recorded")

	if _, stderr, err := env.run(t, "", "run", env.source, "--preset", "x0.9"); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	stdout, _, err = env.run(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, stdout, "CombatMod")
	requireContains(t, stdout, "x0.9")
	requireContains(t, stdout, "completed")

	stdout, _, err = env.run(t, "", "history", "--json")
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var runs []history.Run
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil || len(runs) != 1 {
		t.Fatalf("decode history json: %v (%q)", err, stdout)
	}

	store := testsupport.MustOpenHistory(t, env.cfg)
	last, err := store.LastRun(context.Background())
	if err != nil || last == nil || last.ID != runs[0].ID || last.Counts.Merged != 1 {
		t.Fatalf("ledger mismatch: %+v %v", last, err)
	}

	stdout, _, err = env.run(t, "", "history", "show", runs[0].ID[:8])
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, stdout, "a.hkx")
	requireContains(t, stdout, "merged")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"sword/a.hkx": "1.0 A\n"}, testsupport.WithHistoryDisabled())
	if _, _, err := env.run(t, "", "history"); !errors.Is(err, errHistoryDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}
}

func TestInspectCommand(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{
		"shield/bash.hkx":           "1.0 Hit\n",
		"shield/weapon_unequip.hkx": "1.0 U\n",
		"shield/notes.txt":          "x",
	})
	stdout, _, err := env.run(t, "", "inspect", env.source, "--verbose")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, stdout, "batch mode")
	requireContains(t, stdout, "shield")
	requireContains(t, stdout, "unequip weapon_unequip.hkx")
	if _, err := os.Stat(env.cfg.Paths.ResultsDir); !os.IsNotExist(err) {
		t.Fatal("inspect must not create output")
	}

	stdout, _, err = env.run(t, "", "inspect", env.source, "--json")
	if err != nil {
		t.Fatalf("inspect --json: %v", err)
	}
	var report inspectReport
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Movesets) != 1 || len(report.Movesets[0].Cpr) != 1 || len(report.Movesets[0].Support) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"sword/a.hkx": "1.0 A\n"})
	stdout, _, err := env.run(t, "", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "[OK] Ready")
	requireContains(t, stdout, "not created yet")

	env.cfg.Tool.Binary = "definitely-not-hkanno"
	writeTestConfig(t, env.configPath, env.cfg)
	stdout, _, err = env.run(t, "", "status")
	if exitCode(err) != exitFailure {
		t.Fatalf("expected failure exit for missing tool, got %v", err)
	}
	requireContains(t, stdout, "[ERROR]")

	if _, _, err := env.run(t, "", "run", env.source, "--scale", "0.9"); err == nil {
		t.Fatal("run should fail while the tool is missing")
	}
	env.cfg = testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	env.cfg.Paths.ResultsDir = filepath.Join(env.baseDir, "HKXShift_results")
	writeTestConfig(t, env.configPath, env.cfg)
	if _, stderr, err := env.run(t, "", "run", env.source, "--scale", "0.9", "--keep-intermediates"); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	stdout, _, err = env.run(t, "", "status")
	if err != nil {
		t.Fatalf("status after run: %v", err)
	}
	requireContains(t, stdout, "CombatMod-merged")
	requireContains(t, stdout, "CombatMod-rescaled")
}

func TestLogCommand(t *testing.T) {
	env := setupCLITestEnv(t, map[string]string{"sword/a.hkx": "1.0 A\n"})
	if _, _, err := env.run(t, "", "log"); err == nil {
		t.Fatal("expected error before any run")
	}
	if _, stderr, err := env.run(t, "", "run", env.source, "--scale", "0.9"); err != nil {
		t.Fatalf("run: %v\n%s", err, stderr)
	}
	stdout, _, err := env.run(t, "", "log", "-n", "0")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	requireContains(t, stdout, "=== HKXShift Processing Log for CombatMod ===")
	requireContains(t, stdout, audit.EndMarker)

	stdout, _, err = env.run(t, "", "log", "CombatMod", "--follow", "-n", "3")
	if err != nil {
		t.Fatalf("log --follow: %v", err)
	}
	requireContains(t, stdout, audit.EndMarker)
}

func TestConfigInitAndValidate(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "hkxshift", "config.toml")

	stdout, _, err := runCLI(t, "", []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, target)
	if _, _, err := runCLI(t, "", []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
	if _, _, err := runCLI(t, "", []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	env := setupCLITestEnv(t, map[string]string{"sword/a.hkx": "1.0 A\n"})
	stdout, _, err = env.run(t, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, stdout, "Configuration valid")
}
