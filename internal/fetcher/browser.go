package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/shelfwatch/shelfwatch/internal/config"
	"github.com/shelfwatch/shelfwatch/internal/input"
	"github.com/shelfwatch/shelfwatch/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod. Some
// pages only render the embedded payload client-side; a stealth page keeps
// the automation fingerprint down on sites that gate on it. One page is
// reused for the whole run — the sweep is sequential, and session state
// (store cookies) must survive across fetches.
type BrowserFetcher struct {
	browser *rod.Browser
	page    *rod.Page
	cfg     *config.FetcherConfig
	srcCfg  *config.SourceConfig
	logger  *slog.Logger
}

// NewBrowserFetcher launches a headless browser and prepares a stealth page.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger) (*BrowserFetcher, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-setuid-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if cfg.Fetcher.ProxyURL != "" {
		l = l.Proxy(cfg.Fetcher.ProxyURL)
	}

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("stealth page: %w", err)
	}

	if len(cfg.Source.UserAgents) > 0 {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: cfg.Source.UserAgents[0],
		})
		if err != nil {
			logger.Warn("failed to set user agent", "error", err)
		}
	}

	bf := &BrowserFetcher{
		browser: browser,
		page:    page,
		cfg:     &cfg.Fetcher,
		srcCfg:  &cfg.Source,
		logger:  logger.With("component", "browser_fetcher"),
	}

	bf.logger.Info("browser fetcher ready")
	return bf, nil
}

// Fetch navigates to a URL and returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*types.Document, error) {
	start := time.Now()
	page := bf.page.Context(ctx)

	if err := page.Timeout(bf.cfg.RequestTimeout).Navigate(rawURL); err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}

	if err := page.Timeout(bf.cfg.RequestTimeout).WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", rawURL, "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: true}
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	// Rod doesn't easily expose status codes; block/not-found pages are
	// recognized by their content instead.
	duration := time.Since(start)
	doc := types.NewDocument(0, []byte(html), finalURL, duration)

	bf.logger.Debug("browser fetch complete",
		"url", rawURL,
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return doc, nil
}

// SelectStoreContext navigates to the store page so the browser session picks
// up that location's cookies.
func (bf *BrowserFetcher) SelectStoreContext(ctx context.Context, store input.Store) error {
	if bf.srcCfg.StoreURLTemplate == "" {
		return nil
	}
	storeURL := fmt.Sprintf(bf.srcCfg.StoreURLTemplate, store.ID)

	page := bf.page.Context(ctx)
	if err := page.Timeout(bf.cfg.RequestTimeout).Navigate(storeURL); err != nil {
		return fmt.Errorf("store context for %s: %w", store.ID, err)
	}
	if err := page.Timeout(bf.cfg.RequestTimeout).WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("store page stability timeout, continuing", "store_id", store.ID, "error", err)
	}

	bf.logger.Debug("store context selected", "store_id", store.ID, "url", storeURL)
	return nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	if bf.page != nil {
		_ = bf.page.Close()
	}
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}
