package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"hkxshift/internal/config"
	"hkxshift/internal/logging"
	"hkxshift/internal/services"
)

func TestNewFromConfigConsole(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	logger, err := logging.NewFromConfig(&cfg, &buf, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record printed at info level: %q", out)
	}
	if !strings.Contains(out, "INFO – visible") {
		t.Fatalf("expected info record, got %q", out)
	}
}

func TestNewFromConfigDebugOverride(t *testing.T) {
	cfg := config.Default()
	var buf bytes.Buffer

	logger, err := logging.NewFromConfig(&cfg, &buf, true)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("detail", slog.Int("count", 3))
	if !strings.Contains(buf.String(), "DEBUG – detail") || !strings.Contains(buf.String(), "count: 3") {
		t.Fatalf("expected debug output with fields, got %q", buf.String())
	}
}

func TestConsoleSubjectAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger = logging.NewComponentLogger(logger, "pipeline")
	logger.Info("file failed",
		logging.String(logging.FieldMoveset, "mco_sword"),
		logging.String(logging.FieldFile, "attack1.hkx"),
		logging.String(logging.FieldPhase, "merge"),
		logging.String("error_hint", "check tool output"),
	)

	out := buf.String()
	if !strings.Contains(out, "INFO [pipeline] mco_sword · attack1.hkx (merge) – file failed") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "    - Error Hint: check tool output") {
		t.Fatalf("expected humanized detail line, got %q", out)
	}
	if strings.Contains(out, "Moveset:") {
		t.Fatalf("subject fields should not repeat as details: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("scale outside recommended range", slog.Float64("scale", 1.5))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if decoded["level"] != "warn" {
		t.Fatalf("unexpected level: %v", decoded["level"])
	}
	if _, ok := decoded["ts"]; !ok {
		t.Fatal("expected ts key")
	}
	if decoded["scale"] != 1.5 {
		t.Fatalf("unexpected scale: %v", decoded["scale"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for input, want := range tests {
		if got := logging.ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewLineHandler(&buf, nil, ""))

	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithMoveset(ctx, "mco_sword")
	ctx = services.WithPhase(ctx, "extract")
	logging.WithContext(ctx, logger).Info("step")

	for _, want := range []string{"run_id=run-1", "moveset=mco_sword", "phase=extract"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in %q", want, buf.String())
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewLineHandler(&buf, nil, ""))

	logging.WarnWithContext(logger, "copy failed", "support_copy_failed", logging.String(logging.FieldImpact, "file missing from output"))

	out := buf.String()
	if !strings.Contains(out, "event_type=support_copy_failed") {
		t.Fatalf("expected event_type, got %q", out)
	}
	if !strings.Contains(out, "error_hint=") {
		t.Fatalf("expected default error_hint, got %q", out)
	}
	if !strings.Contains(out, `impact="file missing from output"`) {
		t.Fatalf("expected caller impact to be kept, got %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should not be enabled")
	}
	logging.ErrorWithContext(nil, "ignored", "noop")
}
