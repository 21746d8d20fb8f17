package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/Alexgichamba/denoiser/internal/config"
	"github.com/Alexgichamba/denoiser/internal/ledger"
)

func openStore(t *testing.T) *ledger.Store {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Paths.StateDir = dir
	cfg.Paths.LogDir = dir

	store, err := ledger.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	const runID = "0b54f1f2-8c40-4f3b-9c57-0a9c2f6f9a11"
	if err := store.BeginRun(ctx, runID, "gate16", "cpu", 3); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run == nil {
		t.Fatal("run not found after BeginRun")
	}
	if run.Status != ledger.RunRunning || run.TotalFiles != 3 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.FinishedAt != nil {
		t.Fatal("running run must not have a finish time")
	}

	if err := store.FinishRun(ctx, runID, 2, 1, ledger.RunCompleted); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	run, err = store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun after finish: %v", err)
	}
	if run.Status != ledger.RunCompleted || run.Enhanced != 2 || run.Failed != 1 {
		t.Fatalf("unexpected finished run: %+v", run)
	}
	if run.FinishedAt == nil {
		t.Fatal("finished run must have a finish time")
	}
}

func TestRecordAndListFiles(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	const runID = "4b8f4c1e-2f6c-42a1-a7d2-2cf4a33d9f02"
	if err := store.BeginRun(ctx, runID, "gate16", "cpu", 2); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	ok := ledger.FileRecord{
		SourcePath: "/in/a.wav",
		OutputPath: "/out/a.wav",
		Status:     ledger.FileEnhanced,
		Duration:   1500 * time.Millisecond,
	}
	bad := ledger.FileRecord{
		SourcePath: "/in/b.wav",
		Status:     ledger.FileFailed,
		Error:      "decode: unexpected EOF",
		Duration:   20 * time.Millisecond,
	}
	if err := store.RecordFile(ctx, runID, ok); err != nil {
		t.Fatalf("RecordFile ok: %v", err)
	}
	if err := store.RecordFile(ctx, runID, bad); err != nil {
		t.Fatalf("RecordFile bad: %v", err)
	}

	records, err := store.FilesForRun(ctx, runID)
	if err != nil {
		t.Fatalf("FilesForRun: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].SourcePath != "/in/a.wav" || records[0].Status != ledger.FileEnhanced {
		t.Fatalf("first record: %+v", records[0])
	}
	if records[0].Duration != 1500*time.Millisecond {
		t.Fatalf("duration round-trip: %v", records[0].Duration)
	}
	if records[1].Error != "decode: unexpected EOF" || records[1].OutputPath != "" {
		t.Fatalf("second record: %+v", records[1])
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	ids := []string{
		"11111111-0000-0000-0000-000000000001",
		"11111111-0000-0000-0000-000000000002",
	}
	for _, id := range ids {
		if err := store.BeginRun(ctx, id, "gate16", "cpu", 0); err != nil {
			t.Fatalf("BeginRun %s: %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[1] {
		t.Fatalf("expected newest run first, got %s", runs[0].ID)
	}

	limited, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 run, got %d", len(limited))
	}
}

func TestGetRunMissing(t *testing.T) {
	store := openStore(t)
	run, err := store.GetRun(context.Background(), "does-not-exist")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run != nil {
		t.Fatalf("expected nil run, got %+v", run)
	}
}
