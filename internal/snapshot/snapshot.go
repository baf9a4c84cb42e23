// Package snapshot persists one Snapshot per store per run. Field names and
// order are stable across runs so downstream diffing stays meaningful.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shelfwatch/shelfwatch/internal/config"
	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Writer is the interface for all snapshot backends.
type Writer interface {
	// Write persists one store's snapshot for the given run date
	// (YYYY-MM-DD).
	Write(ctx context.Context, runDate string, snap *types.Snapshot) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the backend identifier.
	Name() string
}

// New creates the writer named by the configuration.
func New(cfg *config.StorageConfig, logger *slog.Logger) (Writer, error) {
	switch cfg.Type {
	case "file":
		return NewFileWriter(cfg.OutputDir, logger)
	case "mongodb":
		return NewMongoWriter(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
	case "multi":
		fw, err := NewFileWriter(cfg.OutputDir, logger)
		if err != nil {
			return nil, err
		}
		mw, err := NewMongoWriter(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
		if err != nil {
			return nil, err
		}
		return NewMultiWriter([]Writer{fw, mw}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// MultiWriter fans snapshots out to multiple backends.
type MultiWriter struct {
	backends []Writer
	logger   *slog.Logger
}

// NewMultiWriter creates a writer that fans out to multiple backends.
func NewMultiWriter(backends []Writer, logger *slog.Logger) *MultiWriter {
	return &MultiWriter{
		backends: backends,
		logger:   logger.With("component", "multi_writer"),
	}
}

func (w *MultiWriter) Name() string { return "multi" }

func (w *MultiWriter) Write(ctx context.Context, runDate string, snap *types.Snapshot) error {
	var firstErr error
	for _, backend := range w.backends {
		if err := backend.Write(ctx, runDate, snap); err != nil {
			w.logger.Error("backend write failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (w *MultiWriter) Close() error {
	var firstErr error
	for _, backend := range w.backends {
		if err := backend.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
