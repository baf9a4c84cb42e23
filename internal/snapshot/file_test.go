package snapshot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func sampleSnapshot() *types.Snapshot {
	price := 12.97
	inStock := true
	return &types.Snapshot{
		StoreID:   "2648",
		StoreSlug: "secaucus",
		Results: []types.FetchOutcome{
			{
				SKU:       "577940535",
				StoreID:   "2648",
				StoreSlug: "secaucus",
				Status:    types.StatusOK,
				CheckedAt: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
				Facts: &types.ProductFacts{
					SKU:          "577940535",
					Title:        "Great Value 2% Milk",
					PriceCurrent: &price,
					InStock:      &inStock,
				},
			},
			{
				SKU:       "606746957",
				StoreID:   "2648",
				StoreSlug: "secaucus",
				Status:    types.StatusNotFound,
				CheckedAt: time.Date(2026, 8, 30, 9, 0, 1, 0, time.UTC),
			},
		},
	}
}

func TestFileWriterLayout(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWriter(dir, testLogger)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer w.Close()

	snap := sampleSnapshot()
	if err := w.Write(context.Background(), "2026-08-30", snap); err != nil {
		t.Fatalf("Write: %v", err)
	}

	path := filepath.Join(dir, "2026-08-30", "secaucus.json")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("snapshot not written at expected path: %v", err)
	}

	var got types.Snapshot
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if got.StoreID != "2648" || got.StoreSlug != "secaucus" {
		t.Errorf("store fields = %q/%q", got.StoreID, got.StoreSlug)
	}
	if len(got.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(got.Results))
	}
	if got.Results[0].Facts == nil || got.Results[0].Facts.Title != "Great Value 2% Milk" {
		t.Errorf("first result lost its facts: %+v", got.Results[0])
	}
	// An outcome with no facts omits the field rather than writing null facts.
	if got.Results[1].Facts != nil {
		t.Errorf("second result should have no facts: %+v", got.Results[1])
	}
}

func TestFileWriterOverwritesSameStoreSameDate(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWriter(dir, testLogger)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer w.Close()

	snap := sampleSnapshot()
	if err := w.Write(context.Background(), "2026-08-30", snap); err != nil {
		t.Fatalf("first write: %v", err)
	}

	snap.Results = snap.Results[:1]
	if err := w.Write(context.Background(), "2026-08-30", snap); err != nil {
		t.Fatalf("second write: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(dir, "2026-08-30", "secaucus.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got types.Snapshot
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Results) != 1 {
		t.Errorf("rerun should replace the file, got %d results", len(got.Results))
	}
}

func TestMultiWriterFansOutAndReportsFirstError(t *testing.T) {
	ok := &recordingWriter{name: "ok"}
	bad := &recordingWriter{name: "bad", err: os.ErrPermission}
	mw := NewMultiWriter([]Writer{bad, ok}, testLogger)

	err := mw.Write(context.Background(), "2026-08-30", sampleSnapshot())
	if err != os.ErrPermission {
		t.Errorf("err = %v, want first backend error", err)
	}
	// A failing backend must not stop the others.
	if ok.writes != 1 || bad.writes != 1 {
		t.Errorf("writes = ok:%d bad:%d, want 1 each", ok.writes, bad.writes)
	}
}

type recordingWriter struct {
	name   string
	err    error
	writes int
}

func (w *recordingWriter) Name() string { return w.name }

func (w *recordingWriter) Write(ctx context.Context, runDate string, snap *types.Snapshot) error {
	w.writes++
	return w.err
}

func (w *recordingWriter) Close() error { return nil }
