// Package fetcher retrieves product pages. Two implementations exist: a
// plain HTTP client and a headless browser for pages that only materialize
// the embedded payload client-side. Classification never happens here; a
// fetcher returns what the site sent, HTTP errors included, and only fails
// on transport-level problems.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shelfwatch/shelfwatch/internal/config"
	"github.com/shelfwatch/shelfwatch/internal/input"
	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Fetcher is the interface for all page retrieval implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given URL.
	Fetch(ctx context.Context, url string) (*types.Document, error)

	// SelectStoreContext binds the session to a store location so the site
	// serves that store's prices and availability. Best effort: callers log
	// a failure and proceed without a confirmed store context.
	SelectStoreContext(ctx context.Context, store input.Store) error

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New creates the fetcher named by the configuration.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	switch cfg.Fetcher.Type {
	case "http":
		return NewHTTPFetcher(cfg, logger)
	case "browser":
		return NewBrowserFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported fetcher type: %s", cfg.Fetcher.Type)
	}
}

// RandomDelay returns a random delay around the base duration (±25%).
func RandomDelay(base time.Duration) time.Duration {
	jitter := float64(base) * 0.25
	return base + time.Duration(rand.Float64()*2*jitter-jitter)
}
