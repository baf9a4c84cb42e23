package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shelfwatch/shelfwatch/internal/config"
	"github.com/shelfwatch/shelfwatch/internal/input"
	"github.com/shelfwatch/shelfwatch/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// productPage returns a page whose embedded payload resolves the given SKU
// with a title and price.
func productPage(sku string, inStock bool) []byte {
	return []byte(fmt.Sprintf(`<html><head><title>Product Page</title></head><body>
<script id="__NEXT_DATA__" type="application/json">
{"props":{"pageProps":{"product":{"usItemId":%q,"name":"Item %s","currentPrice":3.98,"inStock":%t}}}}
</script>
</body></html>`, sku, sku, inStock))
}

type stubResponse struct {
	doc *types.Document
	err error
	// pan makes the fetch panic, exercising the per-SKU recover.
	pan bool
}

// stubFetcher serves canned documents keyed by SKU.
type stubFetcher struct {
	responses map[string]stubResponse
	fetches   []string
	storeErr  error
	contexts  []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (*types.Document, error) {
	f.fetches = append(f.fetches, url)
	for sku, resp := range f.responses {
		if url == "https://example.test/ip/"+sku {
			if resp.pan {
				panic("fixture panic")
			}
			return resp.doc, resp.err
		}
	}
	return nil, &types.FetchError{URL: url, Err: types.ErrEmptyResponse}
}

func (f *stubFetcher) SelectStoreContext(ctx context.Context, store input.Store) error {
	f.contexts = append(f.contexts, store.ID)
	return f.storeErr
}

func (f *stubFetcher) Close() error { return nil }
func (f *stubFetcher) Type() string { return "stub" }

// captureWriter keeps snapshots in memory.
type captureWriter struct {
	runDates  []string
	snapshots []*types.Snapshot
	err       error
}

func (w *captureWriter) Name() string { return "capture" }

func (w *captureWriter) Write(ctx context.Context, runDate string, snap *types.Snapshot) error {
	if w.err != nil {
		return w.err
	}
	w.runDates = append(w.runDates, runDate)
	w.snapshots = append(w.snapshots, snap)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Source.ProductURLTemplate = "https://example.test/ip/%s"
	cfg.Source.StoreURLTemplate = "https://example.test/store/%s"
	cfg.Run.Throttle = 10 * time.Millisecond
	return cfg
}

func newTestRunner(cfg *config.Config, f *stubFetcher, w *captureWriter) (*Runner, *int) {
	r := New(cfg, f, w, testLogger)
	sleeps := 0
	r.sleep = func(time.Duration) { sleeps++ }
	r.now = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	return r, &sleeps
}

func doc(status int, body []byte) *types.Document {
	return types.NewDocument(status, body, "https://example.test/ip/x", time.Millisecond)
}

func TestRunOneOutcomePerPair(t *testing.T) {
	f := &stubFetcher{responses: map[string]stubResponse{
		"111": {doc: doc(200, productPage("111", true))},
		"222": {doc: doc(200, productPage("222", false))},
		"333": {err: &types.FetchError{URL: "x", Err: types.ErrTimeout, Retryable: true}},
	}}
	w := &captureWriter{}
	r, _ := newTestRunner(testConfig(), f, w)

	stores := []input.Store{
		{ID: "2648", Slug: "secaucus"},
		{ID: "5260", Slug: "north-bergen"},
	}
	skus := []string{"111", "222", "333"}

	if err := r.Run(context.Background(), stores, skus); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(w.snapshots) != 2 {
		t.Fatalf("got %d snapshots, want one per store", len(w.snapshots))
	}
	for i, snap := range w.snapshots {
		if snap.StoreID != stores[i].ID || snap.StoreSlug != stores[i].Slug {
			t.Errorf("snapshot %d store = %s/%s", i, snap.StoreID, snap.StoreSlug)
		}
		if len(snap.Results) != len(skus) {
			t.Fatalf("snapshot %d has %d results, want %d", i, len(snap.Results), len(skus))
		}
		for j, res := range snap.Results {
			if res.SKU != skus[j] {
				t.Errorf("snapshot %d result %d sku = %s, want %s (input order)", i, j, res.SKU, skus[j])
			}
			if res.StoreID != stores[i].ID {
				t.Errorf("result %d carries store %s, want %s", j, res.StoreID, stores[i].ID)
			}
		}
		if got := snap.Results[0].Status; got != types.StatusOK {
			t.Errorf("sku 111 status = %s, want ok", got)
		}
		if got := snap.Results[1].Status; got != types.StatusOutOfStock {
			t.Errorf("sku 222 status = %s, want out_of_stock", got)
		}
		if got := snap.Results[2].Status; got != types.StatusNotFound {
			t.Errorf("sku 333 status = %s, want not_found", got)
		}
	}

	if w.runDates[0] != "2026-08-30" {
		t.Errorf("run date = %s", w.runDates[0])
	}
	if got := r.Stats().ChecksTotal.Load(); got != 6 {
		t.Errorf("ChecksTotal = %d, want 6", got)
	}
	if got := r.Stats().StoresSwept.Load(); got != 2 {
		t.Errorf("StoresSwept = %d, want 2", got)
	}
}

func TestRunKeepsFactsOnOutOfStock(t *testing.T) {
	f := &stubFetcher{responses: map[string]stubResponse{
		"222": {doc: doc(200, productPage("222", false))},
	}}
	w := &captureWriter{}
	r, _ := newTestRunner(testConfig(), f, w)

	if err := r.Run(context.Background(), []input.Store{{ID: "1", Slug: "a"}}, []string{"222"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := w.snapshots[0].Results[0]
	if res.Status != types.StatusOutOfStock {
		t.Fatalf("status = %s", res.Status)
	}
	if res.Facts == nil || res.Facts.Title != "Item 222" {
		t.Errorf("out_of_stock outcome should keep its facts: %+v", res.Facts)
	}
}

func TestRunEveryFetchFails(t *testing.T) {
	f := &stubFetcher{responses: map[string]stubResponse{}}
	w := &captureWriter{}
	r, _ := newTestRunner(testConfig(), f, w)

	stores := []input.Store{{ID: "1", Slug: "a"}, {ID: "2", Slug: "b"}}
	skus := []string{"111", "222"}

	if err := r.Run(context.Background(), stores, skus); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(w.snapshots) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(w.snapshots))
	}
	for _, snap := range w.snapshots {
		if len(snap.Results) != 2 {
			t.Fatalf("snapshot %s has %d results", snap.StoreSlug, len(snap.Results))
		}
		for _, res := range snap.Results {
			if res.Status != types.StatusNotFound {
				t.Errorf("failed fetch status = %s, want not_found", res.Status)
			}
			if res.Facts != nil {
				t.Errorf("failed fetch should carry no facts")
			}
		}
	}
}

func TestRunBlockedStatusCode(t *testing.T) {
	f := &stubFetcher{responses: map[string]stubResponse{
		"111": {doc: doc(403, []byte("<html><body>nope</body></html>"))},
	}}
	w := &captureWriter{}
	r, _ := newTestRunner(testConfig(), f, w)

	if err := r.Run(context.Background(), []input.Store{{ID: "1", Slug: "a"}}, []string{"111"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := w.snapshots[0].Results[0].Status; got != types.StatusBlocked {
		t.Errorf("status = %s, want blocked", got)
	}
}

func TestRunPanicDegradesSingleSKU(t *testing.T) {
	f := &stubFetcher{responses: map[string]stubResponse{
		"111": {doc: doc(200, productPage("111", true))},
		"222": {pan: true},
		"333": {doc: doc(200, productPage("333", true))},
	}}
	w := &captureWriter{}
	r, _ := newTestRunner(testConfig(), f, w)

	if err := r.Run(context.Background(), []input.Store{{ID: "1", Slug: "a"}}, []string{"111", "222", "333"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	results := w.snapshots[0].Results
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Status != types.StatusOK || results[2].Status != types.StatusOK {
		t.Errorf("panic bled into neighbours: %s / %s", results[0].Status, results[2].Status)
	}
	if results[1].Status != types.StatusNotFound {
		t.Errorf("panicking sku status = %s, want not_found", results[1].Status)
	}
	if results[1].Facts != nil {
		t.Errorf("panicking sku should carry no facts")
	}
}

func TestRunThrottlesBetweenFetchesOnly(t *testing.T) {
	f := &stubFetcher{responses: map[string]stubResponse{
		"111": {doc: doc(200, productPage("111", true))},
		"222": {doc: doc(200, productPage("222", true))},
		"333": {doc: doc(200, productPage("333", true))},
	}}
	w := &captureWriter{}
	r, sleeps := newTestRunner(testConfig(), f, w)

	stores := []input.Store{{ID: "1", Slug: "a"}, {ID: "2", Slug: "b"}}
	if err := r.Run(context.Background(), stores, []string{"111", "222", "333"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Two gaps per store, no trailing sleep after a store's last SKU.
	if *sleeps != 4 {
		t.Errorf("sleeps = %d, want 4", *sleeps)
	}
}

func TestRunStoreContextFailureContinues(t *testing.T) {
	f := &stubFetcher{
		responses: map[string]stubResponse{
			"111": {doc: doc(200, productPage("111", true))},
		},
		storeErr: errors.New("store page unreachable"),
	}
	w := &captureWriter{}
	r, _ := newTestRunner(testConfig(), f, w)

	if err := r.Run(context.Background(), []input.Store{{ID: "1", Slug: "a"}}, []string{"111"}); err != nil {
		t.Fatalf("Run should proceed without a store context: %v", err)
	}
	if len(f.contexts) != 1 {
		t.Errorf("store context attempts = %d, want 1", len(f.contexts))
	}
	if len(w.snapshots) != 1 || w.snapshots[0].Results[0].Status != types.StatusOK {
		t.Errorf("sweep did not proceed after context failure")
	}
}

func TestRunSnapshotWriteErrorStopsRun(t *testing.T) {
	f := &stubFetcher{responses: map[string]stubResponse{
		"111": {doc: doc(200, productPage("111", true))},
	}}
	w := &captureWriter{err: errors.New("disk full")}
	r, _ := newTestRunner(testConfig(), f, w)

	err := r.Run(context.Background(), []input.Store{{ID: "1", Slug: "a"}}, []string{"111"})
	if err == nil {
		t.Fatal("expected write error to propagate")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	f := &stubFetcher{responses: map[string]stubResponse{
		"111": {doc: doc(200, productPage("111", true))},
	}}
	w := &captureWriter{}
	r, _ := newTestRunner(testConfig(), f, w)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, []input.Store{{ID: "1", Slug: "a"}}, []string{"111"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(w.snapshots) != 0 {
		t.Errorf("cancelled run should write nothing")
	}
}
