package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)

	if _, ok := newFanoutHandler(nil, NoopHandler{}, nil).(NoopHandler); !ok {
		t.Error("expected NoopHandler when no real sinks are given")
	}
	if h := newFanoutHandler(nil, inner, NoopHandler{}); h != inner {
		t.Error("expected single real sink to be returned unwrapped")
	}
}

func TestFanoutHandlerEnabledIfAnySinkEnabled(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(
		slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug enabled through the debug sink")
	}

	h = newFanoutHandler(
		slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info disabled when every sink filters it")
	}
}

func TestTeeHandlerRoutesByLevel(t *testing.T) {
	var console, audit bytes.Buffer
	consoleHandler, err := NewHandler(Options{Level: "info", Format: "console", Output: &console})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	auditHandler := NewLineHandler(&audit, slog.LevelDebug, "")

	logger := slog.New(TeeHandler(consoleHandler, auditHandler))
	logger.Debug("tool invocation", String("op", "dump"))
	logger.Info("moveset started", String(FieldMoveset, "mco_sword"))

	if strings.Contains(console.String(), "tool invocation") {
		t.Errorf("debug record leaked to info console: %q", console.String())
	}
	if !strings.Contains(console.String(), "moveset started") {
		t.Errorf("expected info record on console, got %q", console.String())
	}
	if !strings.Contains(audit.String(), "DEBUG tool invocation op=dump") {
		t.Errorf("expected debug record in audit sink, got %q", audit.String())
	}
	if !strings.Contains(audit.String(), "INFO moveset started moveset=mco_sword") {
		t.Errorf("expected info record in audit sink, got %q", audit.String())
	}
}

func TestFanoutHandlerWithAttrsReachesEverySink(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newFanoutHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String("run_id", "abc")}).WithGroup("g"))
	logger.Info("test", slog.String("field", "value"))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !bytes.Contains(buf.Bytes(), []byte(`"run_id":"abc"`)) {
			t.Errorf("sink %d missing attribute: %s", i, buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"g":{"field":"value"}`)) {
			t.Errorf("sink %d missing group: %s", i, buf.String())
		}
	}
}

func TestTeeLogger(t *testing.T) {
	var baseBuf, teeBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))
	logger := TeeLogger(base, slog.NewJSONHandler(&teeBuf, nil))
	logger.Info("teed message")

	if baseBuf.Len() == 0 || teeBuf.Len() == 0 {
		t.Fatalf("expected output in both sinks: base=%q tee=%q", baseBuf.String(), teeBuf.String())
	}

	teeBuf.Reset()
	TeeLogger(nil, slog.NewJSONHandler(&teeBuf, nil)).Info("no base")
	if teeBuf.Len() == 0 {
		t.Error("expected output without a base logger")
	}
}
