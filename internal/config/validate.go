package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if !strings.Contains(cfg.Source.ProductURLTemplate, "%s") {
		return fmt.Errorf("source.product_url_template must contain a %%s verb for the SKU")
	}
	if cfg.Source.StoreURLTemplate != "" && !strings.Contains(cfg.Source.StoreURLTemplate, "%s") {
		return fmt.Errorf("source.store_url_template must contain a %%s verb for the store id")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.MaxRetries < 0 {
		return fmt.Errorf("fetcher.max_retries must be >= 0, got %d", cfg.Fetcher.MaxRetries)
	}
	if cfg.Fetcher.ProxyURL != "" {
		if _, err := url.Parse(cfg.Fetcher.ProxyURL); err != nil {
			return fmt.Errorf("invalid proxy URL %q: %w", cfg.Fetcher.ProxyURL, err)
		}
	}

	if cfg.Extract.ScriptID == "" {
		return fmt.Errorf("extract.script_id must not be empty")
	}
	if cfg.Extract.StateMarker == "" {
		return fmt.Errorf("extract.state_marker must not be empty")
	}

	if cfg.Run.Throttle < 0 {
		return fmt.Errorf("run.throttle must be >= 0")
	}
	if cfg.Run.SKUFile == "" {
		return fmt.Errorf("run.sku_file must not be empty")
	}
	if cfg.Run.StoreFile == "" {
		return fmt.Errorf("run.store_file must not be empty")
	}

	validStorageTypes := map[string]bool{
		"file": true, "mongodb": true, "multi": true,
	}
	if !validStorageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not supported (valid: file, mongodb, multi)", cfg.Storage.Type)
	}
	if cfg.Storage.Type != "file" && cfg.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for storage.type %q", cfg.Storage.Type)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}
