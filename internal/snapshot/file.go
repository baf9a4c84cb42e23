package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shelfwatch/shelfwatch/internal/types"
)

// FileWriter writes each snapshot to <dir>/<run-date>/<store-slug>.json so a
// daily job can commit the whole directory and diff runs against each other.
type FileWriter struct {
	dir    string
	count  int
	logger *slog.Logger
}

// NewFileWriter creates a file-backed snapshot writer rooted at dir.
func NewFileWriter(dir string, logger *slog.Logger) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileWriter{
		dir:    dir,
		logger: logger.With("component", "file_writer"),
	}, nil
}

func (w *FileWriter) Name() string { return "file" }

func (w *FileWriter) Write(ctx context.Context, runDate string, snap *types.Snapshot) error {
	dir := filepath.Join(w.dir, runDate)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	path := filepath.Join(dir, snap.StoreSlug+".json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	w.count++
	w.logger.Info("snapshot written", "path", path, "results", len(snap.Results))
	return nil
}

func (w *FileWriter) Close() error {
	w.logger.Info("file writer closing", "snapshots", w.count)
	return nil
}
