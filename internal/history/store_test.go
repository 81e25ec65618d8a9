package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"hkxshift/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestLastRunEmpty(t *testing.T) {
	store := openStore(t)
	run, err := store.LastRun(context.Background())
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if run != nil {
		t.Fatalf("expected no run, got %+v", run)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := history.Run{
		ID:        "run-1",
		Source:    "/mods/mco",
		Base:      "mco",
		Scale:     0.8,
		ScaleText: "0.8",
		Status:    "completed",
		StartedAt: base,
		EndedAt:   base.Add(3 * time.Second),
		Duration:  3 * time.Second,
		Counts:    history.Counts{Movesets: 2, Extracted: 4, Rescaled: 4, Merged: 4, CprSkipped: 1},
	}
	files := []history.FileOutcome{
		{Moveset: "sword", File: "attack1.hkx", Class: "processable", State: "merged"},
		{Moveset: "sword", File: "weapon_equip.hkx", Class: "preserve_cpr", State: "copied"},
		{Moveset: "axe", File: "idle.hkx", Class: "processable", State: "failed", Phase: "extract", Error: "exit 1"},
	}
	if err := store.RecordRun(ctx, first, files); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	second := first
	second.ID = "run-2"
	second.Source = "/mods/other"
	second.Status = "aborted"
	second.Reason = "tool missing"
	second.StartedAt = base.Add(time.Hour)
	second.EndedAt = base.Add(time.Hour)
	if err := store.RecordRun(ctx, second, nil); err != nil {
		t.Fatalf("RecordRun second: %v", err)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Fatalf("unexpected order: %+v", runs)
	}
	got := runs[1]
	if got.Scale != 0.8 || got.Counts.Merged != 4 || got.Counts.CprSkipped != 1 || got.Duration != 3*time.Second {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.StartedAt.Equal(base) {
		t.Fatalf("started_at = %v, want %v", got.StartedAt, base)
	}
	if runs[0].Reason != "tool missing" {
		t.Fatalf("reason not stored: %+v", runs[0])
	}

	last, err := store.LastRun(ctx)
	if err != nil || last == nil || last.ID != "run-2" {
		t.Fatalf("LastRun = %+v, %v", last, err)
	}

	limited, err := store.ListRuns(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("ListRuns(1) = %d runs, %v", len(limited), err)
	}

	outcomes, err := store.Files(ctx, "run-1")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(outcomes) != 3 || outcomes[0].Moveset != "axe" || outcomes[0].Phase != "extract" {
		t.Fatalf("unexpected outcomes %+v", outcomes)
	}
}

func TestRecordRunReplacesSameID(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	run := history.Run{ID: "dup", Source: "/a", Base: "a", Scale: 1.2, ScaleText: "1.2", Status: "cancelled", StartedAt: time.Now()}
	if err := store.RecordRun(ctx, run, []history.FileOutcome{{Moveset: "m", File: "a.hkx", Class: "processable", State: "pending"}}); err != nil {
		t.Fatal(err)
	}
	run.Status = "completed"
	if err := store.RecordRun(ctx, run, nil); err != nil {
		t.Fatal(err)
	}
	runs, err := store.ListRuns(ctx, 0)
	if err != nil || len(runs) != 1 || runs[0].Status != "completed" {
		t.Fatalf("expected one replaced run, got %+v %v", runs, err)
	}
	files, err := store.Files(ctx, "dup")
	if err != nil || len(files) != 0 {
		t.Fatalf("expected files replaced, got %+v %v", files, err)
	}
}

func TestRecordRunRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.RecordRun(context.Background(), history.Run{}, nil); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestOpenReusesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.RecordRun(context.Background(), history.Run{ID: "x", Source: "/s", Base: "s", ScaleText: "0.9", Scale: 0.9, Status: "completed"}, nil); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	last, err := reopened.LastRun(context.Background())
	if err != nil || last == nil || last.ID != "x" {
		t.Fatalf("expected persisted run, got %+v %v", last, err)
	}
	if reopened.Path() != path {
		t.Fatalf("Path() = %q", reopened.Path())
	}

	if _, err := history.Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
