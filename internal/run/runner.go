// Package run orchestrates one sweep: stores × SKUs, sequentially, with a
// fixed throttle between product fetches. Every (store, SKU) pair yields
// exactly one FetchOutcome — a failure anywhere in a single SKU's processing
// degrades that outcome to not_found, never the rest of the run.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfwatch/shelfwatch/internal/classify"
	"github.com/shelfwatch/shelfwatch/internal/config"
	"github.com/shelfwatch/shelfwatch/internal/extract"
	"github.com/shelfwatch/shelfwatch/internal/fetcher"
	"github.com/shelfwatch/shelfwatch/internal/input"
	"github.com/shelfwatch/shelfwatch/internal/snapshot"
	"github.com/shelfwatch/shelfwatch/internal/types"
)

// Runner sweeps every store × SKU pair and writes one snapshot per store.
type Runner struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	locator *extract.Locator
	writer  snapshot.Writer
	logger  *slog.Logger
	stats   *Stats

	// sleep and now are swappable in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates a Runner.
func New(cfg *config.Config, f fetcher.Fetcher, w snapshot.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:     cfg,
		fetcher: f,
		locator: extract.NewLocator(cfg.Extract.ScriptID, cfg.Extract.StateMarker, logger),
		writer:  w,
		logger:  logger.With("component", "runner"),
		stats:   &Stats{},
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Stats returns the run's counters.
func (r *Runner) Stats() *Stats {
	return r.stats
}

// Run sweeps all stores. Store-context failures are logged and skipped; only
// snapshot write failures propagate, since losing a whole store's output is
// not a per-SKU condition.
func (r *Runner) Run(ctx context.Context, stores []input.Store, skus []string) error {
	r.stats.StartTime = r.now()
	runDate := r.now().Format("2006-01-02")

	for _, store := range stores {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.logger.Info("sweeping store", "store_id", store.ID, "store_slug", store.Slug, "skus", len(skus))

		if err := r.fetcher.SelectStoreContext(ctx, store); err != nil {
			// Proceed without a confirmed store context.
			r.logger.Warn("store context selection failed, continuing",
				"store_id", store.ID, "error", err)
		}

		snap := &types.Snapshot{
			StoreID:   store.ID,
			StoreSlug: store.Slug,
			Results:   make([]types.FetchOutcome, 0, len(skus)),
		}

		for i, sku := range skus {
			outcome := r.checkSKU(ctx, store, sku)
			snap.Results = append(snap.Results, outcome)
			r.stats.Record(outcome.Status)

			if i < len(skus)-1 && r.cfg.Run.Throttle > 0 {
				r.sleep(r.cfg.Run.Throttle)
			}
		}

		if err := r.writer.Write(ctx, runDate, snap); err != nil {
			return fmt.Errorf("write snapshot for %s: %w", store.Slug, err)
		}

		counts := snap.Counts()
		r.logger.Info("store sweep complete",
			"store_slug", store.Slug,
			"ok", counts[types.StatusOK],
			"out_of_stock", counts[types.StatusOutOfStock],
			"not_found", counts[types.StatusNotFound],
			"blocked", counts[types.StatusBlocked],
		)
		r.stats.StoresSwept.Add(1)
	}

	return nil
}

// checkSKU fetches, extracts and classifies one SKU. A panic anywhere in the
// extraction path degrades this one outcome to not_found.
func (r *Runner) checkSKU(ctx context.Context, store input.Store, sku string) (outcome types.FetchOutcome) {
	outcome = types.FetchOutcome{
		SKU:       sku,
		StoreID:   store.ID,
		StoreSlug: store.Slug,
		Status:    types.StatusNotFound,
		CheckedAt: r.now(),
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("sku check panicked, degrading to not_found",
				"store_id", store.ID, "sku", sku, "panic", rec)
			outcome.Status = types.StatusNotFound
			outcome.Facts = nil
		}
	}()

	url := fmt.Sprintf(r.cfg.Source.ProductURLTemplate, sku)

	doc, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		outcome.Status = classify.Classify(nil, err, false, nil)
		r.logger.Debug("fetch failed", "sku", sku, "status", outcome.Status, "error", err)
		return outcome
	}

	// Block/not-found signals decide the outcome before any extraction:
	// pulling a payload out of a CAPTCHA interstitial proves nothing.
	if _, decided := classify.PageSignal(doc); decided {
		outcome.Status = classify.Classify(doc, nil, false, nil)
		return outcome
	}

	var facts *types.ProductFacts
	tree, located := r.locator.Locate(doc)
	if located {
		if node, ok := extract.ResolveProduct(tree, sku); ok {
			// Partial knowledge is kept even when the status ends up
			// not_found: a known title with no price is still a finding.
			facts, _ = extract.NormalizeFacts(node, sku)
		}
	}

	outcome.Status = classify.Classify(doc, nil, located, facts)
	outcome.Facts = facts
	return outcome
}
