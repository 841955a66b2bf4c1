package history_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"subsyncarr/internal/history"
	"subsyncarr/internal/testsupport"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	if store.Path() != cfg.HistoryDBPath() {
		t.Fatalf("unexpected database path %q", store.Path())
	}
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	run := history.Run{
		ID:             "run-1",
		Trigger:        "api",
		Status:         history.StatusCompleted,
		StartedAt:      started,
		FinishedAt:     started.Add(90 * time.Second),
		Engines:        []string{"ffsubsync", "alass"},
		Paths:          []string{"/media/tv"},
		FilesTotal:     3,
		FilesSucceeded: 2,
		FilesFailed:    1,
		Report:         json.RawMessage(`{"success":{},"failure":{}}`),
	}
	if err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected run to be found")
	}
	if got.Status != history.StatusCompleted || got.FilesFailed != 1 || got.Trigger != "api" {
		t.Fatalf("unexpected run: %#v", got)
	}
	if len(got.Engines) != 2 || got.Engines[1] != "alass" {
		t.Fatalf("unexpected engines: %v", got.Engines)
	}
	if got.Duration() != 90*time.Second {
		t.Fatalf("unexpected duration: %v", got.Duration())
	}
	if string(got.Report) != `{"success":{},"failure":{}}` {
		t.Fatalf("unexpected report: %s", got.Report)
	}

	missing, err := store.Get(ctx, "absent")
	if err != nil || missing != nil {
		t.Fatalf("expected nil run for missing id, got %#v err=%v", missing, err)
	}
}

func TestRecordRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.Record(context.Background(), history.Run{}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestListNewestFirstAndPrune(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := history.Run{
			ID:        id,
			Trigger:   "cli",
			Status:    history.StatusFailed,
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Engines:   []string{"alass"},
		}
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record %s failed: %v", id, err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %#v", runs)
	}

	removed, err := store.Prune(ctx, base.Add(90*time.Minute))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 pruned runs, got %d", removed)
	}
	runs, err = store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "c" {
		t.Fatalf("unexpected remaining runs: %#v", runs)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.OpenPath(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
